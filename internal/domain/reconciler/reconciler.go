// Package reconciler wires the pipeline stages into one run:
// normalize and consolidate each side, match across sides, aggregate.
//
// A run is synchronous and holds no state beyond its own collections, so one
// Engine can serve any number of independent runs.
package reconciler

import (
	"github.com/eshaffer321/ledger-recon/internal/domain/aggregator"
	"github.com/eshaffer321/ledger-recon/internal/domain/consolidator"
	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
	"github.com/eshaffer321/ledger-recon/internal/domain/lexicon"
	"github.com/eshaffer321/ledger-recon/internal/domain/matcher"
	"github.com/eshaffer321/ledger-recon/internal/domain/normalizer"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/identity"
)

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Lexicon *lexicon.Lexicon
	Matcher *matcher.Config
	IDs     ledger.IDSource
}

// Engine runs reconciliations.
type Engine struct {
	normalizer   *normalizer.Normalizer
	consolidator *consolidator.Consolidator
	matcher      *matcher.Matcher
}

// New creates an engine. It fails only when the lexicon does not compile.
func New(opts Options) (*Engine, error) {
	ids := opts.IDs
	if ids == nil {
		ids = identity.UUIDSource{}
	}
	cfg := matcher.DefaultConfig()
	if opts.Matcher != nil {
		cfg = *opts.Matcher
	}

	n, err := normalizer.New(opts.Lexicon, ids)
	if err != nil {
		return nil, err
	}

	return &Engine{
		normalizer:   n,
		consolidator: consolidator.New(ids),
		matcher:      matcher.NewMatcher(cfg),
	}, nil
}

// Run reconciles an ERP table against a vendor table.
func (e *Engine) Run(erp, vendor ledger.Table) *ledger.Result {
	erpEntries, erpCounts := e.prepare(erp, ledger.SideERP)
	vendorEntries, vendorCounts := e.prepare(vendor, ledger.SideVendor)

	m := e.matcher.Match(erpEntries, vendorEntries)

	return &ledger.Result{
		Matches:         nonNilMatches(m.Matches),
		UnmatchedERP:    nonNilEntries(m.UnmatchedERP),
		UnmatchedVendor: nonNilEntries(m.UnmatchedVendor),
		Stats:           aggregator.Aggregate(m.Matches, m.UnmatchedERP, m.UnmatchedVendor),
		Counts: map[ledger.Side]ledger.SideCounts{
			ledger.SideERP:    erpCounts,
			ledger.SideVendor: vendorCounts,
		},
	}
}

// prepare normalizes and consolidates one side.
func (e *Engine) prepare(table ledger.Table, side ledger.Side) ([]*ledger.Entry, ledger.SideCounts) {
	normalized := e.normalizer.Normalize(table, side)
	consolidated := e.consolidator.Consolidate(normalized)

	return consolidated, ledger.SideCounts{
		Raw:          len(table.Rows),
		Normalized:   len(normalized),
		Consolidated: len(consolidated),
	}
}

// JSON consumers get [] rather than null for empty lists.
func nonNilMatches(m []ledger.MatchResult) []ledger.MatchResult {
	if m == nil {
		return []ledger.MatchResult{}
	}
	return m
}

func nonNilEntries(e []*ledger.Entry) []*ledger.Entry {
	if e == nil {
		return []*ledger.Entry{}
	}
	return e
}
