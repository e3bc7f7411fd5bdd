// Package aggregator reduces a match outcome to per-tier statistics.
package aggregator

import (
	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
)

// Aggregate counts matches per status and sums their differences, and counts
// each unmatched list and sums its amounts.
func Aggregate(matches []ledger.MatchResult, unmatchedERP, unmatchedVendor []*ledger.Entry) ledger.Stats {
	var s ledger.Stats
	for _, m := range matches {
		var t *ledger.Totals
		switch m.Status {
		case ledger.StatusPerfect:
			t = &s.Perfect
		case ledger.StatusDifference:
			t = &s.Difference
		case ledger.StatusTier2:
			t = &s.Tier2
		case ledger.StatusTier3:
			t = &s.Tier3
		default:
			continue
		}
		t.Count++
		t.Sum = t.Sum.Add(m.Difference)
	}

	s.UnmatchedERP = sumAmounts(unmatchedERP)
	s.UnmatchedVendor = sumAmounts(unmatchedVendor)
	return s
}

func sumAmounts(entries []*ledger.Entry) ledger.Totals {
	t := ledger.Totals{Count: len(entries)}
	for _, e := range entries {
		t.Sum = t.Sum.Add(e.Amount)
	}
	return t
}
