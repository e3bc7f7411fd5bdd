// Package matcher correlates consolidated ERP entries with vendor entries.
//
// Matching runs three tiers in strict order, each greedy and first-fit in
// vendor order:
//   - Tier 1: trimmed raw invoice strings are equal. Perfect Match when the
//     amounts differ by at most PerfectTolerance, Difference Match otherwise
//   - Tier 2: amounts within FuzzyAmountTolerance and code similarity at
//     least FuzzyMinSimilarity
//   - Tier 3: equal non-empty dates and code similarity at least
//     DateMinSimilarity
//
// An entry claimed by one tier is never offered to a later one, so every
// entry appears in at most one match.
//
// Example usage:
//
//	m := matcher.NewMatcher(matcher.DefaultConfig())
//	res := m.Match(erpEntries, vendorEntries)
//	for _, pair := range res.Matches {
//		fmt.Println(pair.ERPInvoice, pair.Status)
//	}
package matcher

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/ledger-recon/internal/domain/codes"
	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
)

// Add small epsilon to handle floating point precision issues
const epsilon = 0.0000001

// Matcher matches ERP entries with vendor entries
type Matcher struct {
	config         Config
	perfectTol     decimal.Decimal
	fuzzyAmountTol decimal.Decimal
}

// NewMatcher creates a new matcher with the given config
func NewMatcher(config Config) *Matcher {
	return &Matcher{
		config:         config,
		perfectTol:     decimal.NewFromFloat(config.PerfectTolerance),
		fuzzyAmountTol: decimal.NewFromFloat(config.FuzzyAmountTolerance),
	}
}

// run tracks claimed entries across the tiers of one Match call.
type run struct {
	erp, vendor   []*ledger.Entry
	claimedERP    map[string]bool
	claimedVendor map[string]bool
	matches       []ledger.MatchResult
}

func (r *run) claim(e, v *ledger.Entry, status ledger.MatchStatus, similarity *float64) {
	r.claimedERP[e.ID] = true
	r.claimedVendor[v.ID] = true
	r.matches = append(r.matches, ledger.MatchResult{
		ERPID:         e.ID,
		VendorID:      v.ID,
		ERPInvoice:    e.Invoice,
		VendorInvoice: v.Invoice,
		ERPAmount:     e.Amount,
		VendorAmount:  v.Amount,
		Difference:    e.Amount.Sub(v.Amount).Abs().Round(2),
		Status:        status,
		Similarity:    similarity,
	})
}

// Match runs all tiers and returns the matches plus the leftovers of each
// side.
func (m *Matcher) Match(erp, vendor []*ledger.Entry) *Result {
	r := &run{
		erp:           erp,
		vendor:        vendor,
		claimedERP:    make(map[string]bool, len(erp)),
		claimedVendor: make(map[string]bool, len(vendor)),
	}

	m.matchExact(r)
	m.matchFuzzyAmount(r)
	m.matchSameDate(r)

	res := &Result{Matches: r.matches}
	for _, e := range erp {
		if !r.claimedERP[e.ID] {
			res.UnmatchedERP = append(res.UnmatchedERP, e)
		}
	}
	for _, v := range vendor {
		if !r.claimedVendor[v.ID] {
			res.UnmatchedVendor = append(res.UnmatchedVendor, v)
		}
	}
	return res
}

// matchExact is tier 1.
func (m *Matcher) matchExact(r *run) {
	byInvoice := indexBy(r.vendor, func(v *ledger.Entry) string {
		return strings.TrimSpace(v.Invoice)
	})

	for _, e := range r.erp {
		if r.claimedERP[e.ID] {
			continue
		}
		v := firstUnclaimed(byInvoice[strings.TrimSpace(e.Invoice)], r.claimedVendor)
		if v == nil {
			continue
		}

		status := ledger.StatusDifference
		if e.Amount.Sub(v.Amount).Abs().LessThanOrEqual(m.perfectTol) {
			status = ledger.StatusPerfect
		}
		r.claim(e, v, status, nil)
	}
}

// matchFuzzyAmount is tier 2.
func (m *Matcher) matchFuzzyAmount(r *run) {
	for _, e := range r.erp {
		if r.claimedERP[e.ID] {
			continue
		}
		for _, v := range r.vendor {
			if r.claimedVendor[v.ID] {
				continue
			}
			if e.Amount.Sub(v.Amount).Abs().GreaterThan(m.fuzzyAmountTol) {
				continue
			}
			sim := codes.Similarity(e.NormalizedCode, v.NormalizedCode)
			if sim+epsilon < m.config.FuzzyMinSimilarity {
				continue
			}
			r.claim(e, v, ledger.StatusTier2, &sim)
			break // One match per ERP entry
		}
	}
}

// matchSameDate is tier 3.
func (m *Matcher) matchSameDate(r *run) {
	byDate := indexBy(r.vendor, func(v *ledger.Entry) string { return v.Date })

	for _, e := range r.erp {
		if r.claimedERP[e.ID] || e.Date == "" {
			continue
		}
		for _, v := range byDate[e.Date] {
			if r.claimedVendor[v.ID] {
				continue
			}
			sim := codes.Similarity(e.NormalizedCode, v.NormalizedCode)
			if sim+epsilon < m.config.DateMinSimilarity {
				continue
			}
			r.claim(e, v, ledger.StatusTier3, &sim)
			break
		}
	}
}

// indexBy groups entries by key, keeping input order inside each bucket.
func indexBy(entries []*ledger.Entry, key func(*ledger.Entry) string) map[string][]*ledger.Entry {
	idx := make(map[string][]*ledger.Entry)
	for _, e := range entries {
		k := key(e)
		idx[k] = append(idx[k], e)
	}
	return idx
}

func firstUnclaimed(candidates []*ledger.Entry, claimed map[string]bool) *ledger.Entry {
	for _, c := range candidates {
		if !claimed[c.ID] {
			return c
		}
	}
	return nil
}
