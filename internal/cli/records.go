package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eshaffer321/ledger-recon/internal/domain/exceptions"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/storage"
)

const recordsUsage = `usage: recon records <subcommand>

  list [-status S] [-search Q] [-entity P] [-vendor P] [-json]
  complete ID
  reopen ID
  comment ID TEXT...
  delete ID
  clear
`

// RunRecords implements "recon records".
func RunRecords(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(app.Stderr, recordsUsage)
		return errUsage
	}

	store, err := storage.NewStorage(app.Config.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return runRecords(ctx, app, store, args)
}

func runRecords(ctx context.Context, app *App, repo storage.Repository, args []string) error {
	sub, rest := args[0], args[1:]

	switch sub {
	case "list":
		return listRecords(ctx, app, repo, rest)
	case "complete", "reopen":
		status := exceptions.StatusComplete
		if sub == "reopen" {
			status = exceptions.StatusIncomplete
		}
		id, err := requireID(app, sub, rest)
		if err != nil {
			return err
		}
		return patchRecord(ctx, app, repo, id, exceptions.Patch{Status: &status})
	case "comment":
		if len(rest) < 2 {
			fmt.Fprint(app.Stderr, recordsUsage)
			return errUsage
		}
		comments := strings.Join(rest[1:], " ")
		return patchRecord(ctx, app, repo, rest[0], exceptions.Patch{Comments: &comments})
	case "delete":
		id, err := requireID(app, sub, rest)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
		fmt.Fprintf(app.Stdout, "deleted %s\n", id)
		return nil
	case "clear":
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(app.Stdout, "cleared all records")
		return nil
	}

	fmt.Fprintf(app.Stderr, "unknown records subcommand %q\n\n", sub)
	fmt.Fprint(app.Stderr, recordsUsage)
	return errUsage
}

func listRecords(ctx context.Context, app *App, repo storage.Repository, args []string) error {
	flags, err := ParseRecordsListFlags(args, app.Stderr)
	if err != nil {
		return err
	}

	filter := exceptions.Filter{Search: flags.Search, Entity: flags.Entity, Vendor: flags.Vendor}
	if flags.Status != "" {
		status, err := exceptions.ParseStatus(flags.Status)
		if err != nil {
			return err
		}
		filter.Status = status
	}

	records, err := repo.List(ctx, filter)
	if err != nil {
		return err
	}

	if flags.JSON {
		enc := json.NewEncoder(app.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	PrintRecords(app.Stdout, records)
	return nil
}

func patchRecord(ctx context.Context, app *App, repo storage.Repository, id string, patch exceptions.Patch) error {
	record, err := repo.UpdatePartial(ctx, id, patch)
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	fmt.Fprintf(app.Stdout, "%s: %s", record.ID, record.Status)
	if record.Comments != "" {
		fmt.Fprintf(app.Stdout, " (%s)", record.Comments)
	}
	fmt.Fprintln(app.Stdout)
	return nil
}

func requireID(app *App, sub string, args []string) (string, error) {
	if len(args) != 1 {
		fmt.Fprintf(app.Stderr, "records %s takes exactly one record ID\n", sub)
		return "", errUsage
	}
	return args[0], nil
}
