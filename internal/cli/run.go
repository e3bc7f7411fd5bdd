package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eshaffer321/ledger-recon/internal/adapters/ingest"
	"github.com/eshaffer321/ledger-recon/internal/adapters/report"
	"github.com/eshaffer321/ledger-recon/internal/application/service"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/storage"
)

// RunReconcile implements "recon run".
func RunReconcile(ctx context.Context, app *App, args []string) error {
	flags, err := ParseRunFlags(args, app.Stderr)
	if err != nil {
		return err
	}

	erp, err := ingest.ReadFile(flags.ERP)
	if err != nil {
		return err
	}
	vendor, err := ingest.ReadFile(flags.Vendor)
	if err != nil {
		return err
	}

	engine, err := app.Engine()
	if err != nil {
		return err
	}

	var repo storage.Repository
	if flags.Push {
		store, err := storage.NewStorage(app.Config.Storage.DatabasePath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		repo = store
	}

	svc := service.NewReconcileService(engine, repo, nil, nil, app.Logger)
	result, err := svc.Reconcile(ctx, erp, vendor)
	if err != nil {
		return err
	}

	var push *service.PushSummary
	if flags.Push {
		summary, err := svc.PushExceptions(ctx, result)
		if err != nil {
			return err
		}
		push = &summary
	}

	if flags.Report != "" {
		if err := report.SaveAs(flags.Report, result); err != nil {
			return err
		}
		app.Logger.Info("report written", "path", flags.Report)
	}

	if flags.JSON {
		enc := json.NewEncoder(app.Stdout)
		enc.SetIndent("", "  ")
		out := struct {
			Result any                  `json:"result"`
			Push   *service.PushSummary `json:"push,omitempty"`
		}{result, push}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
		return nil
	}

	PrintResultSummary(app.Stdout, result)
	if push != nil {
		PrintPushSummary(app.Stdout, *push)
	}
	return nil
}
