// Package codes canonicalizes invoice references and scores how alike two
// canonical codes are.
//
// Clean turns "INV-2024-0057" into "57": lowercase, strip one known prefix,
// strip 20xx year tokens, drop punctuation, drop leading zeros. The result is
// never empty; an input with nothing left becomes "0".
package codes

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/eshaffer321/ledger-recon/internal/domain/lexicon"
)

// EmptyCode is returned when cleaning leaves nothing behind.
const EmptyCode = "0"

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// unitCosts makes substitutions cost 1, like insertions and deletions.
// levenshtein.DefaultOptions charges 2 for a substitution.
var unitCosts = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// Cleaner canonicalizes invoice codes using a compiled lexicon.
type Cleaner struct {
	prefix *regexp.Regexp
	year   *regexp.Regexp
}

// NewCleaner creates a cleaner. Nil expressions are skipped.
func NewCleaner(c *lexicon.Compiled) *Cleaner {
	if c == nil {
		return &Cleaner{}
	}
	return &Cleaner{prefix: c.Prefix, year: c.Year}
}

var defaultCleaner = NewCleaner(lexicon.Default().MustCompile())

// Clean canonicalizes raw with the default lexicon.
func Clean(raw string) string {
	return defaultCleaner.Clean(raw)
}

// Clean canonicalizes raw.
func (c *Cleaner) Clean(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	if c.prefix != nil {
		s = c.prefix.ReplaceAllString(s, "")
	}
	if c.year != nil {
		s = c.year.ReplaceAllString(s, "")
	}
	s = nonAlphanumeric.ReplaceAllString(s, "")
	s = strings.TrimLeft(s, "0")

	if s == "" {
		return EmptyCode
	}
	return s
}

// Similarity returns 1 - distance/maxLen, where distance is the unit-cost
// edit distance. Two empty strings are identical (1.0).
func Similarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}

	dist := levenshtein.DistanceForStrings([]rune(a), []rune(b), unitCosts)
	return 1.0 - float64(dist)/float64(maxLen)
}
