package cli

import (
	"errors"
	"flag"
	"io"
)

// errUsage marks argument errors that were already reported by a FlagSet.
var errUsage = errors.New("usage error")

// GlobalFlags precede the command name.
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
}

// Register binds the global flags to fs.
func (f *GlobalFlags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config.yaml (default: ./config.yaml or environment)")
	fs.BoolVar(&f.Verbose, "verbose", false, "Verbose output")
}

// RunFlags are the flags of the run command.
type RunFlags struct {
	ERP    string
	Vendor string
	Push   bool
	JSON   bool
	Report string
}

// ParseRunFlags parses the run command's arguments.
func ParseRunFlags(args []string, stderr io.Writer) (RunFlags, error) {
	var flags RunFlags
	fs := newFlagSet("run", stderr)
	fs.StringVar(&flags.ERP, "erp", "", "ERP ledger file (csv or xlsx)")
	fs.StringVar(&flags.Vendor, "vendor", "", "Vendor statement file (csv or xlsx)")
	fs.BoolVar(&flags.Push, "push", false, "Store unmatched ERP rows as exception records")
	fs.BoolVar(&flags.JSON, "json", false, "Print the full result as JSON")
	fs.StringVar(&flags.Report, "report", "", "Write an XLSX report to this path")
	if err := parse(fs, args); err != nil {
		return flags, err
	}
	if flags.ERP == "" || flags.Vendor == "" {
		fs.Usage()
		return flags, errUsage
	}
	return flags, nil
}

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port int
}

// ParseServeFlags parses the serve command's arguments. A zero port keeps
// the configured one.
func ParseServeFlags(args []string, stderr io.Writer) (ServeFlags, error) {
	var flags ServeFlags
	fs := newFlagSet("serve", stderr)
	fs.IntVar(&flags.Port, "port", 0, "Port to listen on (default from config)")
	return flags, parse(fs, args)
}

// RecordsListFlags are the filters of "records list".
type RecordsListFlags struct {
	Status string
	Search string
	Entity string
	Vendor string
	JSON   bool
}

// ParseRecordsListFlags parses the "records list" arguments.
func ParseRecordsListFlags(args []string, stderr io.Writer) (RecordsListFlags, error) {
	var flags RecordsListFlags
	fs := newFlagSet("records list", stderr)
	fs.StringVar(&flags.Status, "status", "", "Incomplete or Complete")
	fs.StringVar(&flags.Search, "search", "", "Invoice or amount substring")
	fs.StringVar(&flags.Entity, "entity", "", "Entity pattern, * is a wildcard")
	fs.StringVar(&flags.Vendor, "vendor", "", "Vendor pattern, * is a wildcard")
	fs.BoolVar(&flags.JSON, "json", false, "Print records as JSON")
	return flags, parse(fs, args)
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}
