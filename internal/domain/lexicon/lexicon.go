// Package lexicon holds the locale-specific lookup tables used to interpret
// ledger exports: which column headers play which role, which free-text
// reasons mark payments or credit notes, which invoice prefixes to strip and
// which date layouts to try.
//
// The defaults cover English, Spanish and Greek exports. A YAML file can
// replace any table:
//
//	columns:
//	  invoice: ["invoice", "beleg"]
//	payment_keywords: ["payment", "zahlung"]
package lexicon

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ColumnKeywords lists, per semantic role, the substrings that identify a
// column header. Matching is case-insensitive.
type ColumnKeywords struct {
	Invoice []string `yaml:"invoice"`
	Debit   []string `yaml:"debit"`
	Credit  []string `yaml:"credit"`
	Date    []string `yaml:"date"`
	Reason  []string `yaml:"reason"`
	Entity  []string `yaml:"entity"`
	Vendor  []string `yaml:"vendor"`
}

// Lexicon is the full set of lookup tables.
type Lexicon struct {
	Columns            ColumnKeywords `yaml:"columns"`
	PaymentKeywords    []string       `yaml:"payment_keywords"`
	CreditNoteKeywords []string       `yaml:"credit_note_keywords"`
	InvoicePrefixes    []string       `yaml:"invoice_prefixes"`
	YearPattern        string         `yaml:"year_pattern"`
	DateLayouts        []string       `yaml:"date_layouts"`
}

// Default returns the built-in tables.
func Default() *Lexicon {
	return &Lexicon{
		Columns: ColumnKeywords{
			Invoice: []string{"invoice", "inv no", "factura", "doc", "ref", "num"},
			Debit:   []string{"debit", "debe", "amount", "valor", "total"},
			Credit:  []string{"credit", "haber", "abono"},
			Date:    []string{"date", "fecha", "issue"},
			Reason:  []string{"reason", "desc", "motivo"},
			// "company" names the vendor, never the entity
			Entity: []string{"entity", "entithy", "entidad", "legal", "society", "sociedad", "business unit", "bu_"},
			Vendor: []string{"vendor", "supplier", "payee", "proveedor", "name", "company", "partner", "third party"},
		},
		PaymentKeywords:    []string{"payment", "transfer", "πληρωμ"},
		CreditNoteKeywords: []string{"credit", "cn"},
		InvoicePrefixes: []string{
			"αρ", "τιμ", "pf", "ab", "inv", "tim", "cn", "ar", "pa",
			"πφ", "πα", "apo", "ref", "doc", "num", "no", "apd", "vs",
		},
		YearPattern: `20\d{2}`,
		DateLayouts: []string{
			"2006-01-02",
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006/01/02",
			"01/02/2006",
			"1/2/2006",
			"01/02/2006 15:04:05",
			"Jan 2, 2006",
			"January 2, 2006",
			"2 Jan 2006",
			"02 Jan 2006",
			"2-Jan-2006",
			"02-Jan-2006",
			time.RFC1123,
		},
	}
}

// Load reads a YAML lexicon. Tables missing from the file keep their
// defaults.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lex := Default()
	if err := yaml.Unmarshal(data, lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon %s: %w", path, err)
	}
	if _, err := lex.Compile(); err != nil {
		return nil, err
	}
	return lex, nil
}

// LoadOrDefault loads path when it is non-empty, otherwise returns Default.
func LoadOrDefault(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Compiled holds the regular expressions derived from a Lexicon.
type Compiled struct {
	Prefix *regexp.Regexp
	Year   *regexp.Regexp
}

// Compile builds the prefix and year expressions. The prefix expression is
// anchored at the start and swallows one optional run of non-word characters
// after the prefix.
func (l *Lexicon) Compile() (*Compiled, error) {
	quoted := make([]string, 0, len(l.InvoicePrefixes))
	for _, p := range l.InvoicePrefixes {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(p))
	}

	c := &Compiled{}
	if len(quoted) > 0 {
		re, err := regexp.Compile(`^(?:` + strings.Join(quoted, "|") + `)\W*`)
		if err != nil {
			return nil, fmt.Errorf("invalid invoice prefixes: %w", err)
		}
		c.Prefix = re
	}

	if l.YearPattern != "" {
		re, err := regexp.Compile(l.YearPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid year pattern %q: %w", l.YearPattern, err)
		}
		c.Year = re
	}

	return c, nil
}

// MustCompile is Compile for tables known to be valid, such as Default.
func (l *Lexicon) MustCompile() *Compiled {
	c, err := l.Compile()
	if err != nil {
		panic(err)
	}
	return c
}

// ContainsAny reports whether s contains any of the keywords.
func ContainsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}
