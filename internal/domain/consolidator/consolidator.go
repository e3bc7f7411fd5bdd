// Package consolidator nets offsetting entries that share an invoice code.
//
// Entries are grouped by normalized code. A group of one passes through
// untouched, as does any entry whose code is shorter than MinGroupCodeLength.
// Larger groups collapse into one synthesized entry carrying the absolute
// signed net (credit notes count negative); groups that net to less than one
// cent disappear entirely.
package consolidator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
)

// MinGroupCodeLength is the shortest code trusted as a grouping key.
const MinGroupCodeLength = 2

// Field names reported in Entry.Conflicts.
const (
	FieldInvoice    = "invoice"
	FieldEntity     = "entity"
	FieldVendorName = "vendorName"
	FieldDate       = "date"
)

var zeroThreshold = decimal.RequireFromString("0.01")

// Consolidator nets entry groups.
type Consolidator struct {
	ids ledger.IDSource
}

// New creates a consolidator that names synthesized entries with ids.
func New(ids ledger.IDSource) *Consolidator {
	return &Consolidator{ids: ids}
}

type group struct {
	key     string
	entries []*ledger.Entry
}

// Consolidate nets entries. Output order follows the first appearance of
// each group in the input.
func (c *Consolidator) Consolidate(entries []*ledger.Entry) []*ledger.Entry {
	groups := make([]*group, 0, len(entries))
	byCode := make(map[string]*group)

	for _, e := range entries {
		if len([]rune(e.NormalizedCode)) < MinGroupCodeLength {
			groups = append(groups, &group{key: e.NormalizedCode, entries: []*ledger.Entry{e}})
			continue
		}
		g, ok := byCode[e.NormalizedCode]
		if !ok {
			g = &group{key: e.NormalizedCode}
			byCode[e.NormalizedCode] = g
			groups = append(groups, g)
		}
		g.entries = append(g.entries, e)
	}

	out := make([]*ledger.Entry, 0, len(groups))
	for _, g := range groups {
		if len(g.entries) == 1 {
			out = append(out, g.entries[0])
			continue
		}
		if net := c.net(g); net != nil {
			out = append(out, net)
		}
	}
	return out
}

// net returns the synthesized entry for g, or nil when g fully offsets.
func (c *Consolidator) net(g *group) *ledger.Entry {
	sum := decimal.Zero
	for _, e := range g.entries {
		sum = sum.Add(e.Amount.Mul(decimal.NewFromInt(e.Type.Sign())))
	}
	if sum.Abs().LessThan(zeroThreshold) {
		return nil
	}

	netType := ledger.TypeInvoice
	if sum.IsNegative() {
		netType = ledger.TypeCreditNote
	}

	rep := g.entries[0]
	for _, e := range g.entries {
		if e.Type == netType {
			rep = e
			break
		}
	}

	members := make([]string, len(g.entries))
	for i, e := range g.entries {
		members[i] = e.ID
	}

	out := *rep
	out.ID = fmt.Sprintf("agg-%s-%s", g.key, c.ids.NewID())
	out.Amount = sum.Abs().Round(2)
	out.Type = netType
	out.Members = members
	out.Conflicts = conflicts(g.entries)
	return &out
}

// conflicts lists the descriptive fields whose values differ within a group.
func conflicts(entries []*ledger.Entry) []string {
	fields := []struct {
		name string
		get  func(*ledger.Entry) string
	}{
		{FieldInvoice, func(e *ledger.Entry) string { return e.Invoice }},
		{FieldEntity, func(e *ledger.Entry) string { return e.Entity }},
		{FieldVendorName, func(e *ledger.Entry) string { return e.VendorName }},
		{FieldDate, func(e *ledger.Entry) string { return e.Date }},
	}

	var out []string
	for _, f := range fields {
		first := f.get(entries[0])
		for _, e := range entries[1:] {
			if f.get(e) != first {
				out = append(out, f.name)
				break
			}
		}
	}
	return out
}
