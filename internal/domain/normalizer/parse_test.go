package normalizer

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/eshaffer321/ledger-recon/internal/domain/lexicon"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, "0"},
		{"float", 42.5, "42.5"},
		{"int", 7, "7"},
		{"plain string", "100", "100"},
		{"currency symbol", "$100.25", "100.25"},
		{"euro with thousands dot", "€ 1.234,56", "1234.56"},
		{"us thousands comma", "1,234.56", "1234.56"},
		{"repeated dots are thousands", "1.234.567", "1234567"},
		{"repeated commas are thousands", "1,234,567", "1234567"},
		{"lone comma is decimal", "12,50", "12.5"},
		{"negative", "-15.00", "-15"},
		{"parentheses dropped", "(1,000.00)", "1000"},
		{"trailing dash ignored", "100-", "100"},
		{"garbage", "n/a", "0"},
		{"dash only", "-", "0"},
		{"empty", "   ", "0"},
		{"bool", true, "0"},
		{"NaN", math.NaN(), "0"},
		{"positive infinity", math.Inf(1), "0"},
		{"negative infinity", math.Inf(-1), "0"},
		{"float32 infinity", float32(math.Inf(1)), "0"},
		{"max uint64", uint64(math.MaxUint64), "18446744073709551615"},
		{"json number", json.Number("-12.75"), "-12.75"},
		{"json exponent", json.Number("1e3"), "1000"},
		{"json exponent with fraction", json.Number("1.5E2"), "150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.input)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseDate(t *testing.T) {
	layouts := lexicon.Default().DateLayouts

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, ""},
		{"serial number", 45292.0, "2024-01-01"},
		{"serial int", 45306, "2024-01-15"},
		{"serial with time fraction", 45292.75, "2024-01-01"},
		{"serial string", "45306", "2024-01-15"},
		{"iso string", "2024-03-09", "2024-03-09"},
		{"us string", "03/09/2024", "2024-03-09"},
		{"rfc3339", "2024-03-09T10:00:00Z", "2024-03-09"},
		{"month name", "Mar 9, 2024", "2024-03-09"},
		{"time value", time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), "2023-12-31"},
		{"zero serial", 0.0, ""},
		{"negative serial", -3.0, ""},
		{"unparseable", "next tuesday", ""},
		{"blank", "  ", ""},
		{"NaN serial", math.NaN(), ""},
		{"infinite serial", math.Inf(1), ""},
		{"serial past year 9999", 1e300, ""},
		{"serial string past year 9999", "3000000", ""},
		{"bare year", "2024", "2024-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDate(tt.input, layouts))
		})
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "abc", Text("abc"))
	assert.Equal(t, "1234", Text(1234.0))
	assert.Equal(t, "12.5", Text(12.5))
	assert.Equal(t, "true", Text(true))
	assert.Equal(t, "2024-01-02", Text(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
}
