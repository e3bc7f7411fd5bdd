package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/eshaffer321/ledger-recon/internal/api"
	"github.com/eshaffer321/ledger-recon/internal/application/service"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/storage"
)

// RunServe runs the API server until ctx is cancelled.
func RunServe(ctx context.Context, app *App, args []string) error {
	flags, err := ParseServeFlags(args, app.Stderr)
	if err != nil {
		return err
	}
	logger := app.Logger.With("system", "api")

	engine, err := app.Engine()
	if err != nil {
		return err
	}

	// Initialize storage
	store, err := storage.NewStorage(app.Config.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	apiCfg := api.Config{
		Port:           app.Config.API.Port,
		AllowedOrigins: app.Config.API.AllowedOrigins,
	}
	if flags.Port > 0 {
		apiCfg.Port = flags.Port
	}

	svc := service.NewReconcileService(engine, store, nil, nil, logger)
	server := api.NewServer(apiCfg, api.Deps{Service: svc, Repo: store}, logger)

	// Handle graceful shutdown
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		logger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
