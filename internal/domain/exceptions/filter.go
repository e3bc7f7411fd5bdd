package exceptions

import (
	"regexp"
	"sort"
	"strings"
)

// Filter selects records. Empty fields match everything.
//
// Entity and Vendor are wildcard patterns: without '*' they match any
// case-insensitive substring, with '*' the whole value must match and '*'
// stands for any run of characters.
type Filter struct {
	Status Status
	Search string // invoice substring or amount substring
	Entity string
	Vendor string
}

// Match reports whether r passes the filter.
func (f Filter) Match(r Record) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Search != "" &&
		!strings.Contains(strings.ToLower(r.Invoice), strings.ToLower(f.Search)) &&
		!strings.Contains(r.Amount.String(), f.Search) {
		return false
	}
	return MatchWildcard(r.Entity, f.Entity) && MatchWildcard(r.VendorName, f.Vendor)
}

// Apply returns the records that pass the filter, in their original order.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// MatchWildcard matches text against a '*' pattern, ignoring case.
func MatchWildcard(text, pattern string) bool {
	if pattern == "" {
		return true
	}
	t := strings.ToLower(text)
	p := strings.ToLower(pattern)

	if !strings.Contains(p, "*") {
		return strings.Contains(t, p)
	}

	parts := strings.Split(p, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	re, err := regexp.Compile(`(?s)^` + strings.Join(parts, ".*") + `$`)
	if err != nil {
		return false
	}
	return re.MatchString(t)
}

// SortNewestFirst orders records by AddedAt, most recent first.
func SortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].AddedAt.After(records[j].AddedAt)
	})
}
