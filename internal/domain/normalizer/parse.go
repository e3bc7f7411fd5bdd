package normalizer

import (
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	isoDate = "2006-01-02"

	// maxSerial is 9999-12-31 on the 1900 epoch.
	maxSerial = 2958465
)

var (
	nonNumeric    = regexp.MustCompile(`[^\d,.\-]`)
	numericPrefix = regexp.MustCompile(`^-?(?:\d+\.?\d*|\.\d+)`)
	bareYear      = regexp.MustCompile(`^\d{4}$`)
)

// ParseAmount reads a monetary value. Numbers pass through. Strings lose
// currency symbols and whitespace; when both ',' and '.' appear the later one
// is the decimal mark, a separator repeated on its own is a thousands mark,
// and a single separator is a decimal mark. Anything unreadable is zero.
func ParseAmount(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case float64:
		if !finite(x) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(x)
	case float32:
		if !finite(float64(x)) {
			return decimal.Zero
		}
		return decimal.NewFromFloat32(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt32(x)
	case int64:
		return decimal.NewFromInt(x)
	case uint:
		return fromUint64(uint64(x))
	case uint32:
		return decimal.NewFromInt(int64(x))
	case uint64:
		return fromUint64(x)
	case json.Number:
		if d, err := decimal.NewFromString(x.String()); err == nil {
			return d
		}
		return parseAmountString(x.String())
	case string:
		return parseAmountString(x)
	default:
		return decimal.Zero
	}
}

func fromUint64(x uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func parseAmountString(raw string) decimal.Decimal {
	s := nonNumeric.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "" {
		return decimal.Zero
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = withDecimalMark(strings.ReplaceAll(s, ".", ""), ",")
		} else {
			s = withDecimalMark(strings.ReplaceAll(s, ",", ""), ".")
		}
	case lastComma >= 0:
		s = singleSeparator(s, ",")
	case lastDot >= 0:
		s = singleSeparator(s, ".")
	}

	num := numericPrefix.FindString(s)
	if num == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// withDecimalMark keeps the last occurrence of mark as the decimal point and
// drops earlier ones.
func withDecimalMark(s, mark string) string {
	i := strings.LastIndex(s, mark)
	head := strings.ReplaceAll(s[:i], mark, "")
	return head + "." + s[i+len(mark):]
}

func singleSeparator(s, sep string) string {
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, "")
	}
	return strings.Replace(s, sep, ".", 1)
}

// ParseDate returns v as YYYY-MM-DD, or "" when it cannot be read. A
// four-digit string is a year. Other numbers and numeric strings are
// spreadsheet serials on the 1900 epoch; remaining strings are tried against
// layouts in order.
func ParseDate(v any, layouts []string) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(isoDate)
	case string:
		return parseDateString(x, layouts)
	case json.Number:
		return parseDateString(x.String(), layouts)
	}

	if f, ok := toFloat(v); ok {
		return serialDate(f)
	}
	return ""
}

func parseDateString(raw string, layouts []string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if bareYear.MatchString(s) {
		if t, err := time.Parse("2006", s); err == nil {
			return t.Format(isoDate)
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return serialDate(f)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate)
		}
	}
	return ""
}

func serialDate(f float64) string {
	if !finite(f) || f <= 0 || f >= maxSerial+1 {
		return ""
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return ""
	}
	return t.Format(isoDate)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case decimal.Decimal:
		return x.InexactFloat64(), true
	}
	return 0, false
}

// Text renders a cell value as a string. Missing cells are "".
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(isoDate)
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	case json.Number:
		return x.String()
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}
