package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eshaffer321/ledger-recon/internal/domain/exceptions"
	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
	"github.com/eshaffer321/ledger-recon/internal/domain/reconciler"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/identity"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/storage"
)

// ErrNoStore is returned by PushExceptions when the service has no
// exception store.
var ErrNoStore = errors.New("no exception store configured")

// PushSummary reports the outcome of pushing exceptions to the store.
type PushSummary struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// ReconcileService runs reconciliations and files their unmatched ERP rows
// as exception records.
type ReconcileService struct {
	engine *reconciler.Engine
	repo   storage.Repository
	ids    ledger.IDSource
	clock  ledger.Clock
	logger *slog.Logger
}

// NewReconcileService creates a service. repo may be nil when exceptions are
// never pushed; ids, clock and logger fall back to defaults when nil.
func NewReconcileService(
	engine *reconciler.Engine,
	repo storage.Repository,
	ids ledger.IDSource,
	clock ledger.Clock,
	logger *slog.Logger,
) *ReconcileService {
	if ids == nil {
		ids = identity.UUIDSource{}
	}
	if clock == nil {
		clock = identity.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileService{
		engine: engine,
		repo:   repo,
		ids:    ids,
		clock:  clock,
		logger: logger.With(slog.String("component", "reconcile")),
	}
}

// Reconcile runs the pipeline over both tables. It only fails when ctx is
// already done.
func (s *ReconcileService) Reconcile(ctx context.Context, erp, vendor ledger.Table) (*ledger.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := s.engine.Run(erp, vendor)

	for _, side := range []ledger.Side{ledger.SideERP, ledger.SideVendor} {
		c := result.Counts[side]
		s.logger.Debug("side prepared",
			slog.String("side", string(side)),
			slog.Int("raw", c.Raw),
			slog.Int("normalized", c.Normalized),
			slog.Int("consolidated", c.Consolidated),
		)
	}

	st := result.Stats
	s.logger.Info("reconciliation complete",
		slog.Int("perfect", st.Perfect.Count),
		slog.Int("difference", st.Difference.Count),
		slog.Int("tier2", st.Tier2.Count),
		slog.Int("tier3", st.Tier3.Count),
		slog.Int("unmatched_erp", st.UnmatchedERP.Count),
		slog.Int("unmatched_vendor", st.UnmatchedVendor.Count),
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}

// PushExceptions stores the result's unmatched ERP rows as Incomplete
// exception records, skipping rows whose invoice, amount and vendor already
// exist in the store.
func (s *ReconcileService) PushExceptions(ctx context.Context, result *ledger.Result) (PushSummary, error) {
	if s.repo == nil {
		return PushSummary{}, ErrNoStore
	}
	if result == nil || len(result.UnmatchedERP) == 0 {
		return PushSummary{}, nil
	}

	existing, err := s.repo.GetAll(ctx)
	if err != nil {
		return PushSummary{}, fmt.Errorf("failed to load existing records: %w", err)
	}

	fresh, skipped := exceptions.Dedupe(existing, result.UnmatchedERP)
	summary := PushSummary{Skipped: skipped}

	if len(fresh) > 0 {
		records := exceptions.FromEntries(fresh, s.ids, s.clock)
		if err := s.repo.PutMany(ctx, records); err != nil {
			return PushSummary{}, fmt.Errorf("failed to store records: %w", err)
		}
		summary.Added = len(records)
	}

	s.logger.Info("exceptions pushed",
		slog.Int("added", summary.Added),
		slog.Int("skipped", summary.Skipped),
	)
	return summary, nil
}
