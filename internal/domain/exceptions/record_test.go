package exceptions

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/identity"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func unmatched(invoice, amount, vendor, entity string) *ledger.Entry {
	return &ledger.Entry{
		ID:         "e-" + invoice,
		Invoice:    invoice,
		Amount:     decimal.RequireFromString(amount),
		Date:       "2025-03-01",
		Type:       ledger.TypeInvoice,
		Source:     ledger.SideERP,
		VendorName: vendor,
		Entity:     entity,
	}
}

func TestFromEntries(t *testing.T) {
	// Arrange
	entries := []*ledger.Entry{
		unmatched("INV-1", "10.50", "Widgets", "ACME"),
		unmatched("INV-2", "3.00", "", "  "),
	}

	// Act
	recs := FromEntries(entries, identity.NewSequence("r"), identity.FixedClock{T: fixedNow})

	// Assert
	require.Len(t, recs, 2)
	assert.Equal(t, Record{
		ID:         "DB-r-1",
		Invoice:    "INV-1",
		Amount:     decimal.RequireFromString("10.50"),
		Date:       "2025-03-01",
		VendorName: "Widgets",
		Entity:     "ACME",
		Status:     StatusIncomplete,
		Comments:   "",
		AddedAt:    fixedNow,
	}, recs[0])
	assert.Equal(t, "DB-r-2", recs[1].ID)
	assert.Equal(t, DefaultVendor, recs[1].VendorName)
	assert.Equal(t, DefaultEntity, recs[1].Entity)
}

func TestSignature(t *testing.T) {
	a := Signature("  INV-1 ", decimal.RequireFromString("10.5"), " Widgets ")
	b := Signature("inv-1", decimal.RequireFromString("10.50"), "WIDGETS")

	assert.Equal(t, "inv-1|10.50|widgets", a)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Signature("inv-1", decimal.RequireFromString("10.51"), "widgets"))
}

func TestDedupe(t *testing.T) {
	existing := []Record{
		{Invoice: "INV-1", Amount: decimal.RequireFromString("10.50"), VendorName: "Widgets"},
		{Invoice: "INV-3", Amount: decimal.RequireFromString("7.00"), VendorName: DefaultVendor},
	}
	candidates := []*ledger.Entry{
		unmatched(" inv-1", "10.5", "WIDGETS", ""),
		unmatched("INV-2", "1.00", "Widgets", ""),
		unmatched("INV-3", "7.00", "", ""),
		unmatched("INV-2", "1.00", "widgets", ""),
	}

	fresh, skipped := Dedupe(existing, candidates)

	require.Len(t, fresh, 1)
	assert.Equal(t, "INV-2", fresh[0].Invoice)
	assert.Equal(t, 3, skipped)
}

func TestDedupe_NothingExisting(t *testing.T) {
	candidates := []*ledger.Entry{unmatched("A", "1.00", "V", "")}

	fresh, skipped := Dedupe(nil, candidates)

	assert.Equal(t, candidates, fresh)
	assert.Zero(t, skipped)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("complete")
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, s)

	s, err = ParseStatus(" Incomplete ")
	require.NoError(t, err)
	assert.Equal(t, StatusIncomplete, s)

	_, err = ParseStatus("done")
	assert.Error(t, err)
}

func TestPatch(t *testing.T) {
	r := Record{Status: StatusIncomplete, Comments: "old"}

	assert.True(t, Patch{}.Empty())
	Patch{}.Apply(&r)
	assert.Equal(t, "old", r.Comments)

	status := StatusComplete
	Patch{Status: &status}.Apply(&r)
	assert.Equal(t, StatusComplete, r.Status)
	assert.Equal(t, "old", r.Comments)

	comments := "chased vendor"
	p := Patch{Comments: &comments}
	assert.False(t, p.Empty())
	p.Apply(&r)
	assert.Equal(t, "chased vendor", r.Comments)
}
