// Package cli implements the recon command line: reconcile two ledger files,
// serve the HTTP API, and manage stored exception records.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/eshaffer321/ledger-recon/internal/domain/lexicon"
	"github.com/eshaffer321/ledger-recon/internal/domain/reconciler"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/config"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/logging"
)

const usage = `usage: recon [-config path] [-verbose] <command> [flags]

commands:
  run       reconcile an ERP file against a vendor file
  serve     start the HTTP API
  records   list or update stored exception records
`

// App holds what every subcommand needs.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// Main parses args (without the program name), runs the chosen command and
// returns the process exit code.
func Main(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("recon", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }

	var flags GlobalFlags
	flags.Register(global)
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	app, err := NewApp(flags, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command, rest := global.Arg(0), global.Args()[1:]
	switch command {
	case "run":
		err = RunReconcile(ctx, app, rest)
	case "serve":
		err = RunServe(ctx, app, rest)
	case "records":
		err = RunRecords(ctx, app, rest)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		global.Usage()
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if errors.Is(err, errUsage) {
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// NewApp loads configuration and builds the logger. Logs go to stderr so
// stdout stays clean for JSON output.
func NewApp(flags GlobalFlags, stdout, stderr io.Writer) (*App, error) {
	var cfg *config.Config
	if flags.ConfigPath != "" {
		loaded, err := config.Load(flags.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrEnv()
	}

	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerTo(stderr, loggingCfg).With("system", "cli")

	return &App{Config: cfg, Logger: logger, Stdout: stdout, Stderr: stderr}, nil
}

// Engine builds a reconciliation engine from the app's configuration.
func (a *App) Engine() (*reconciler.Engine, error) {
	lex, err := lexicon.LoadOrDefault(a.Config.Lexicon.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}
	mc := a.Config.MatcherConfig()
	return reconciler.New(reconciler.Options{Lexicon: lex, Matcher: &mc})
}
