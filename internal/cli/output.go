package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/eshaffer321/ledger-recon/internal/application/service"
	"github.com/eshaffer321/ledger-recon/internal/domain/exceptions"
	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
)

// PrintResultSummary prints per-side row counts and the per-tier totals.
func PrintResultSummary(w io.Writer, result *ledger.Result) {
	for _, side := range []ledger.Side{ledger.SideERP, ledger.SideVendor} {
		c := result.Counts[side]
		fmt.Fprintf(w, "%-6s rows=%d normalized=%d consolidated=%d\n", side, c.Raw, c.Normalized, c.Consolidated)
	}
	fmt.Fprintln(w, strings.Repeat("-", 60))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tCOUNT\tSUM")
	s := result.Stats
	rows := []struct {
		label  string
		totals ledger.Totals
	}{
		{string(ledger.StatusPerfect), s.Perfect},
		{string(ledger.StatusDifference), s.Difference},
		{string(ledger.StatusTier2), s.Tier2},
		{string(ledger.StatusTier3), s.Tier3},
		{"Unmatched ERP", s.UnmatchedERP},
		{"Unmatched Vendor", s.UnmatchedVendor},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", r.label, r.totals.Count, r.totals.Sum.StringFixed(2))
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\nMatched %d of %d ERP rows\n", s.MatchedCount(), s.MatchedCount()+s.UnmatchedERP.Count)
}

// PrintPushSummary prints how many exception records a push stored.
func PrintPushSummary(w io.Writer, summary service.PushSummary) {
	fmt.Fprintf(w, "Exceptions: added=%d skipped=%d\n", summary.Added, summary.Skipped)
}

// PrintRecords prints exception records as a table.
func PrintRecords(w io.Writer, records []exceptions.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no records")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tINVOICE\tAMOUNT\tDATE\tVENDOR\tENTITY\tSTATUS\tCOMMENTS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Invoice, r.Amount.StringFixed(2), r.Date, r.VendorName, r.Entity, r.Status, r.Comments)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d records\n", len(records))
}
