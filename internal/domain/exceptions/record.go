// Package exceptions turns unmatched ERP entries into exception records for
// follow-up, and filters stored records the way the record views do.
package exceptions

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
)

// Status is the follow-up state of an exception record.
type Status string

const (
	StatusIncomplete Status = "Incomplete"
	StatusComplete   Status = "Complete"
)

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "incomplete":
		return StatusIncomplete, nil
	case "complete":
		return StatusComplete, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Defaults for descriptive fields left empty by the ledger.
const (
	DefaultVendor = "Unknown Vendor"
	DefaultEntity = "Unknown Entity"
)

// Record is a stored exception.
type Record struct {
	ID         string          `json:"id"`
	Invoice    string          `json:"invoice"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"`
	VendorName string          `json:"vendorName"`
	Entity     string          `json:"entity"`
	Status     Status          `json:"status"`
	Comments   string          `json:"comments"`
	AddedAt    time.Time       `json:"addedAt"`
}

// Signature identifies a record for duplicate detection.
func (r Record) Signature() string {
	return Signature(r.Invoice, r.Amount, r.VendorName)
}

// Signature is lower(trim(invoice)) | amount to 2dp | lower(trim(vendor)).
func Signature(invoice string, amount decimal.Decimal, vendor string) string {
	return strings.ToLower(strings.TrimSpace(invoice)) + "|" +
		amount.StringFixed(2) + "|" +
		strings.ToLower(strings.TrimSpace(vendor))
}

// FromEntries converts entries into new Incomplete records stamped with the
// clock's current time.
func FromEntries(entries []*ledger.Entry, ids ledger.IDSource, clock ledger.Clock) []Record {
	now := clock.Now().UTC()
	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, Record{
			ID:         "DB-" + ids.NewID(),
			Invoice:    e.Invoice,
			Amount:     e.Amount,
			Date:       e.Date,
			VendorName: orDefault(e.VendorName, DefaultVendor),
			Entity:     orDefault(e.Entity, DefaultEntity),
			Status:     StatusIncomplete,
			AddedAt:    now,
		})
	}
	return out
}

// Dedupe drops candidates whose signature already exists, either in existing
// or earlier in candidates. Candidate signatures use the vendor name the
// record would be stored with.
func Dedupe(existing []Record, candidates []*ledger.Entry) (fresh []*ledger.Entry, skipped int) {
	seen := make(map[string]bool, len(existing)+len(candidates))
	for _, r := range existing {
		seen[r.Signature()] = true
	}

	for _, e := range candidates {
		sig := Signature(e.Invoice, e.Amount, orDefault(e.VendorName, DefaultVendor))
		if seen[sig] {
			skipped++
			continue
		}
		seen[sig] = true
		fresh = append(fresh, e)
	}
	return fresh, skipped
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Status   *Status `json:"status,omitempty"`
	Comments *string `json:"comments,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Status == nil && p.Comments == nil
}

// Apply writes the patch onto r.
func (p Patch) Apply(r *Record) {
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Comments != nil {
		r.Comments = *p.Comments
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
