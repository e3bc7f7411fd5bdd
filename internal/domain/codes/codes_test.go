package codes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eshaffer321/ledger-recon/internal/domain/lexicon"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"prefix, year and leading zeros", "INV-2024-0057", "57"},
		{"empty falls back", "", "0"},
		{"whitespace only", "   ", "0"},
		{"all zeros", "000", "0"},
		{"greek prefix", "ΤΙΜ 00123", "123"},
		{"prefix without separator", "inv123", "123"},
		{"year in the middle", "A2023B7", "ab7"},
		{"punctuation stripped", "PO/77.1", "po771"},
		{"only one prefix stripped", "ref-doc-9", "doc9"},
		{"prefix must be at start", "x-inv-9", "xinv9"},
		{"trims before prefix", "  Inv 42 ", "42"},
		{"prefix only", "INV", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.raw))
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	for _, raw := range []string{"INV-2024-0057", "AB/991", "cn 0007", ""} {
		once := Clean(raw)
		assert.Equal(t, once, Clean(once), raw)
	}
}

func TestCleaner_CustomLexicon(t *testing.T) {
	lex := lexicon.Default()
	lex.InvoicePrefixes = []string{"beleg"}
	lex.YearPattern = ""
	cleaner := NewCleaner(lex.MustCompile())

	assert.Equal(t, "20245", cleaner.Clean("Beleg-2024-5"))
	assert.Equal(t, "inv5", cleaner.Clean("INV-5"))
}

func TestCleaner_NilCompiled(t *testing.T) {
	cleaner := NewCleaner(nil)
	assert.Equal(t, "inv20245", cleaner.Clean("INV-2024-05"))
}

func TestSimilarity(t *testing.T) {
	t.Run("one substitution in six", func(t *testing.T) {
		assert.InDelta(t, 1.0-1.0/6.0, Similarity("inv123", "inv124"), 1e-12)
	})

	t.Run("identical", func(t *testing.T) {
		assert.Equal(t, 1.0, Similarity("57", "57"))
	})

	t.Run("both empty", func(t *testing.T) {
		assert.Equal(t, 1.0, Similarity("", ""))
	})

	t.Run("one empty", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity("", "abc"))
	})

	t.Run("substitution costs one", func(t *testing.T) {
		// distance 1 over length 10
		assert.InDelta(t, 0.9, Similarity("1234567890", "1234567899"), 1e-12)
	})

	t.Run("insertion", func(t *testing.T) {
		assert.InDelta(t, 0.75, Similarity("123", "1234"), 1e-12)
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.Equal(t, Similarity("kitten", "sitting"), Similarity("sitting", "kitten"))
		assert.InDelta(t, 1.0-3.0/7.0, Similarity("kitten", "sitting"), 1e-12)
	})
}
