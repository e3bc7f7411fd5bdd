// Package report exports a reconciliation result as an XLSX workbook with
// one sheet per result section.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
)

// Sheet names, in workbook order.
const (
	SheetSummary         = "Summary"
	SheetMatches         = "Matches"
	SheetUnmatchedERP    = "Unmatched ERP"
	SheetUnmatchedVendor = "Unmatched Vendor"
)

var (
	summaryHeader = []any{"Category", "Count", "Sum"}
	matchHeader   = []any{"Status", "ERP Invoice", "Vendor Invoice", "ERP Amount", "Vendor Amount", "Difference", "Similarity"}
	entryHeader   = []any{"Invoice", "Type", "Amount", "Date", "Vendor", "Entity", "Code", "Members", "Conflicts"}
)

// Build creates the workbook for result. The caller owns the returned file.
func Build(result *ledger.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	// NewFile starts with one sheet; rename it instead of leaving it empty.
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		_ = f.Close()
		return nil, err
	}
	for _, name := range []string{SheetMatches, SheetUnmatchedERP, SheetUnmatchedVendor} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	steps := []func(*excelize.File, *ledger.Result) error{
		writeSummary,
		writeMatches,
		func(f *excelize.File, r *ledger.Result) error {
			return writeEntries(f, SheetUnmatchedERP, r.UnmatchedERP)
		},
		func(f *excelize.File, r *ledger.Result) error {
			return writeEntries(f, SheetUnmatchedVendor, r.UnmatchedVendor)
		},
	}
	for _, step := range steps {
		if err := step(f, result); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write streams the workbook for result to w.
func Write(w io.Writer, result *ledger.Result) error {
	f, err := Build(result)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// SaveAs writes the workbook for result to path.
func SaveAs(path string, result *ledger.Result) error {
	f, err := Build(result)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %s: %w", path, err)
	}
	return nil
}

func writeSummary(f *excelize.File, r *ledger.Result) error {
	s := r.Stats
	rows := [][]any{
		summaryHeader,
		totalsRow(string(ledger.StatusPerfect), s.Perfect),
		totalsRow(string(ledger.StatusDifference), s.Difference),
		totalsRow(string(ledger.StatusTier2), s.Tier2),
		totalsRow(string(ledger.StatusTier3), s.Tier3),
		totalsRow("Unmatched ERP", s.UnmatchedERP),
		totalsRow("Unmatched Vendor", s.UnmatchedVendor),
		{"Matched", s.MatchedCount(), nil},
	}
	return writeRows(f, SheetSummary, rows)
}

func totalsRow(label string, t ledger.Totals) []any {
	return []any{label, t.Count, money(t.Sum)}
}

func writeMatches(f *excelize.File, r *ledger.Result) error {
	rows := make([][]any, 0, len(r.Matches)+1)
	rows = append(rows, matchHeader)
	for _, m := range r.Matches {
		var similarity any
		if m.Similarity != nil {
			similarity = *m.Similarity
		}
		rows = append(rows, []any{
			string(m.Status),
			m.ERPInvoice,
			m.VendorInvoice,
			money(m.ERPAmount),
			money(m.VendorAmount),
			money(m.Difference),
			similarity,
		})
	}
	return writeRows(f, SheetMatches, rows)
}

func writeEntries(f *excelize.File, sheet string, entries []*ledger.Entry) error {
	rows := make([][]any, 0, len(entries)+1)
	rows = append(rows, entryHeader)
	for _, e := range entries {
		rows = append(rows, []any{
			e.Invoice,
			string(e.Type),
			money(e.Amount),
			e.Date,
			e.VendorName,
			e.Entity,
			e.NormalizedCode,
			memberCount(e),
			strings.Join(e.Conflicts, ", "),
		})
	}
	return writeRows(f, sheet, rows)
}

// memberCount is blank for rows that were not produced by netting.
func memberCount(e *ledger.Entry) any {
	if !e.Synthesized() {
		return nil
	}
	return len(e.Members)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// money renders amounts as numbers so the sheet can sum them.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
