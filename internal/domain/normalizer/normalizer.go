// Package normalizer turns raw ledger rows into canonical entries.
//
// Column roles are discovered once, from the header of the table, by matching
// column names against the lexicon's keyword lists. Every row is then read
// through those columns:
//
//	amount = round2(|debit - credit|)
//	type   = Ignore if the reason names a payment,
//	         CreditNote if it names a credit note or credit > debit,
//	         Invoice otherwise
//
// Rows typed Ignore or with a zero amount are dropped. Normalization never
// fails; unreadable values fall back to zero or the empty string.
package normalizer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/ledger-recon/internal/domain/codes"
	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
	"github.com/eshaffer321/ledger-recon/internal/domain/lexicon"
)

// Columns maps each semantic role to the column that carries it. An empty
// value means no column matched.
type Columns struct {
	Invoice string
	Debit   string
	Credit  string
	Date    string
	Reason  string
	Entity  string
	Vendor  string
}

// Normalizer reads raw tables into entries.
type Normalizer struct {
	lex     *lexicon.Lexicon
	cleaner *codes.Cleaner
	ids     ledger.IDSource
}

// New creates a normalizer. A nil lexicon uses the defaults.
func New(lex *lexicon.Lexicon, ids ledger.IDSource) (*Normalizer, error) {
	if lex == nil {
		lex = lexicon.Default()
	}
	compiled, err := lex.Compile()
	if err != nil {
		return nil, err
	}
	return &Normalizer{
		lex:     lex,
		cleaner: codes.NewCleaner(compiled),
		ids:     ids,
	}, nil
}

// DetectColumns picks, for every role, the first column (in header order)
// whose lowercased name contains one of the role's keywords.
func (n *Normalizer) DetectColumns(columns []string) Columns {
	kw := n.lex.Columns
	find := func(candidates []string) string {
		for _, col := range columns {
			if lexicon.ContainsAny(strings.ToLower(col), candidates) {
				return col
			}
		}
		return ""
	}

	return Columns{
		Invoice: find(kw.Invoice),
		Debit:   find(kw.Debit),
		Credit:  find(kw.Credit),
		Date:    find(kw.Date),
		Reason:  find(kw.Reason),
		Entity:  find(kw.Entity),
		Vendor:  find(kw.Vendor),
	}
}

// Normalize converts every row of table into an entry for side and drops
// rows that carry nothing to reconcile.
func (n *Normalizer) Normalize(table ledger.Table, side ledger.Side) []*ledger.Entry {
	if len(table.Rows) == 0 {
		return nil
	}

	cols := n.DetectColumns(table.ColumnOrder())

	entries := make([]*ledger.Entry, 0, len(table.Rows))
	for idx, row := range table.Rows {
		e := n.normalizeRow(row, idx, cols, side)
		if e.Type == ledger.TypeIgnore || !e.Amount.IsPositive() {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

func (n *Normalizer) normalizeRow(row ledger.RawRow, idx int, cols Columns, side ledger.Side) *ledger.Entry {
	invoice := fmt.Sprintf("UNKNOWN-%d", idx)
	if cols.Invoice != "" {
		invoice = Text(row[cols.Invoice])
	}

	debit, credit := decimal.Zero, decimal.Zero
	if cols.Debit != "" {
		debit = ParseAmount(row[cols.Debit])
	}
	if cols.Credit != "" {
		credit = ParseAmount(row[cols.Credit])
	}

	var date, reason, entity, vendor string
	if cols.Date != "" {
		date = ParseDate(row[cols.Date], n.lex.DateLayouts)
	}
	if cols.Reason != "" {
		reason = strings.ToLower(Text(row[cols.Reason]))
	}
	if cols.Entity != "" {
		entity = strings.TrimSpace(Text(row[cols.Entity]))
	}
	if cols.Vendor != "" {
		vendor = strings.TrimSpace(Text(row[cols.Vendor]))
	}

	return &ledger.Entry{
		ID:             fmt.Sprintf("%s-%d-%s", side, idx, n.ids.NewID()),
		Invoice:        invoice,
		Amount:         debit.Sub(credit).Abs().Round(2),
		Date:           date,
		Type:           n.classify(reason, debit, credit),
		NormalizedCode: n.cleaner.Clean(invoice),
		Source:         side,
		Entity:         entity,
		VendorName:     vendor,
		OriginalRow:    row,
	}
}

// classify expects reason already lowercased.
func (n *Normalizer) classify(reason string, debit, credit decimal.Decimal) ledger.EntryType {
	if lexicon.ContainsAny(reason, n.lex.PaymentKeywords) {
		return ledger.TypeIgnore
	}
	if lexicon.ContainsAny(reason, n.lex.CreditNoteKeywords) || credit.GreaterThan(debit) {
		return ledger.TypeCreditNote
	}
	return ledger.TypeInvoice
}
