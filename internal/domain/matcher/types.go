package matcher

import (
	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
)

// Config holds matcher configuration
type Config struct {
	PerfectTolerance     float64 // Tier 1 Perfect vs Difference (default: 0.05)
	FuzzyAmountTolerance float64 // Tier 2 max amount gap (default: 1.00)
	FuzzyMinSimilarity   float64 // Tier 2 min code similarity (default: 0.90)
	DateMinSimilarity    float64 // Tier 3 min code similarity (default: 0.75)
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		PerfectTolerance:     0.05,
		FuzzyAmountTolerance: 1.00,
		FuzzyMinSimilarity:   0.90,
		DateMinSimilarity:    0.75,
	}
}

// Result is the outcome of matching two entry sets.
type Result struct {
	Matches         []ledger.MatchResult
	UnmatchedERP    []*ledger.Entry // input order
	UnmatchedVendor []*ledger.Entry // input order
}
