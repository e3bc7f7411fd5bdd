// Package ledger defines the records that flow through a reconciliation run:
// raw tabular rows, normalized line items, match results and the final
// result set with its statistics.
//
// Every value in this package is created fresh per run. Nothing here holds
// state across runs.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Side identifies which ledger a row came from.
type Side string

const (
	SideERP    Side = "ERP"
	SideVendor Side = "VENDOR"
)

// EntryType is the classification of a line item.
type EntryType string

const (
	TypeInvoice    EntryType = "Invoice"
	TypeCreditNote EntryType = "CreditNote"
	TypeIgnore     EntryType = "Ignore"
)

// Sign returns -1 for credit notes and +1 otherwise.
func (t EntryType) Sign() int64 {
	if t == TypeCreditNote {
		return -1
	}
	return 1
}

// RawRow is one row of an ingested sheet: column name to scalar value
// (string, number, bool or time.Time). It is read-only for the core.
type RawRow map[string]any

// Table is an ingested sheet. Columns carries the header order so that
// column discovery is deterministic.
type Table struct {
	Columns []string `json:"columns,omitempty"`
	Rows    []RawRow `json:"rows"`
}

// ColumnOrder returns the header order, falling back to the sorted key set
// of the first row when no header was supplied.
func (t Table) ColumnOrder() []string {
	if len(t.Columns) > 0 {
		return t.Columns
	}
	if len(t.Rows) == 0 {
		return nil
	}
	keys := make([]string, 0, len(t.Rows[0]))
	for k := range t.Rows[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entry is a canonical line item. It is the output of the normalizer and,
// after netting, of the consolidator (a pass-through or synthesized row).
type Entry struct {
	ID             string          `json:"id"`
	Invoice        string          `json:"invoice"`
	Amount         decimal.Decimal `json:"amount"`
	Date           string          `json:"date"`
	Type           EntryType       `json:"type"`
	NormalizedCode string          `json:"normalized_code"`
	Source         Side            `json:"source"`
	Entity         string          `json:"entity"`
	VendorName     string          `json:"vendor_name"`
	OriginalRow    RawRow          `json:"original_row,omitempty"`

	// Set only on rows synthesized by netting.
	Members   []string `json:"members,omitempty"`
	Conflicts []string `json:"conflicts,omitempty"`
}

// Synthesized reports whether the entry was produced by netting a group.
func (e *Entry) Synthesized() bool {
	return len(e.Members) > 0
}

// MatchStatus is the confidence tier of a match.
type MatchStatus string

const (
	StatusPerfect    MatchStatus = "Perfect Match"
	StatusDifference MatchStatus = "Difference Match"
	StatusTier2      MatchStatus = "Tier-2"
	StatusTier3      MatchStatus = "Tier-3"
)

// MatchResult is one correlated ERP/vendor pair.
type MatchResult struct {
	ERPID         string          `json:"erp_id"`
	VendorID      string          `json:"vendor_id"`
	ERPInvoice    string          `json:"erp_invoice"`
	VendorInvoice string          `json:"vendor_invoice"`
	ERPAmount     decimal.Decimal `json:"erp_amount"`
	VendorAmount  decimal.Decimal `json:"vendor_amount"`
	Difference    decimal.Decimal `json:"difference"`
	Status        MatchStatus     `json:"status"`
	Similarity    *float64        `json:"similarity,omitempty"` // tiers 2 and 3 only
}

// Totals is a count and a monetary sum.
type Totals struct {
	Count int             `json:"count"`
	Sum   decimal.Decimal `json:"sum"`
}

// Stats aggregates a run. Match tiers sum differences; unmatched lists sum
// amounts.
type Stats struct {
	Perfect         Totals `json:"perfect"`
	Difference      Totals `json:"difference"`
	Tier2           Totals `json:"tier2"`
	Tier3           Totals `json:"tier3"`
	UnmatchedERP    Totals `json:"unmatched_erp"`
	UnmatchedVendor Totals `json:"unmatched_vendor"`
}

// MatchedCount is the total number of matches across all tiers.
func (s Stats) MatchedCount() int {
	return s.Perfect.Count + s.Difference.Count + s.Tier2.Count + s.Tier3.Count
}

// SideCounts tracks how many rows survived each pipeline stage for one side.
type SideCounts struct {
	Raw          int `json:"raw"`
	Normalized   int `json:"normalized"`
	Consolidated int `json:"consolidated"`
}

// Result is the output of one reconciliation run.
type Result struct {
	Matches         []MatchResult       `json:"matches"`
	UnmatchedERP    []*Entry            `json:"unmatched_erp"`
	UnmatchedVendor []*Entry            `json:"unmatched_vendor"`
	Stats           Stats               `json:"stats"`
	Counts          map[Side]SideCounts `json:"counts"`
}

// IDSource hands out opaque unique identifiers.
type IDSource interface {
	NewID() string
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}
