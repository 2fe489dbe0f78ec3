package rans

import (
	"math"
	"sort"
)

// Table is a built CDF table: an ordered list of groups (fast-path
// single-member groups first, then slow-path multi-member groups, each in
// descending-entropy order) plus a raw-escape band covering the
// remaining probability mass.
type Table struct {
	groups   []Group
	rawStart uint32 // CDF start of the raw band (below M when built by NewTableFromCounts)
	rawPDF   uint32

	// symbolGroup maps a symbol to its group index, or -1 if the symbol
	// is only representable via the raw band.
	symbolGroup map[uint16]int
	// symbolSub maps a symbol to its position within its group's member
	// list (used as the sub-index for slow-path groups).
	symbolSub map[uint16]uint32
}

// rawFraction bounds the extra, uncompressed-equivalent cost the raw
// band may absorb, expressed as a fraction of the non-raw entropy. It is
// a construction-time heuristic: decoders never see it and do not care
// how an encoder chose its raw cutoff.
const rawFraction = 0.01

type rawGroup struct {
	count   uint64 // aggregate raw occurrence count
	members []uint16
}

// NewTableFromCounts builds an encode-side table from a symbol->count
// histogram. counts must be non-empty.
func NewTableFromCounts(counts map[uint16]uint32) (*Table, error) {
	type sym struct {
		value uint16
		count uint32
	}
	syms := make([]sym, 0, len(counts))
	var total uint64
	for v, c := range counts {
		syms = append(syms, sym{value: v, count: c})
		total += uint64(c)
	}
	if len(syms) == 0 {
		return nil, errEmptyHistogram
	}
	sort.Slice(syms, func(i, j int) bool {
		if syms[i].count != syms[j].count {
			return syms[i].count > syms[j].count
		}
		return syms[i].value < syms[j].value
	})

	// Step 2: partition into initial groups of equal raw count.
	type initGroup struct {
		count   uint32 // per-symbol raw count shared by all members
		members []uint16
	}
	var groups []initGroup
	for _, s := range syms {
		if n := len(groups); n > 0 && groups[n-1].count == s.count {
			groups[n-1].members = append(groups[n-1].members, s.value)
		} else {
			groups = append(groups, initGroup{count: s.count, members: []uint16{s.value}})
		}
	}

	// Step 3: absorb the least-frequent tail into the raw band while the
	// cumulative extra cost stays within rawFraction of total entropy.
	preRawEntropy := 0.0
	for _, s := range syms {
		p := float64(s.count) / float64(total)
		preRawEntropy += float64(s.count) * -math.Log2(p)
	}
	var raw rawGroup
	cumExtra := 0.0
	cut := len(groups)
	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		n := float64(len(g.members))
		p := float64(g.count) / float64(total)
		modelled := n * -math.Log2(p)
		uncompressed := n * BlockBits
		extra := uncompressed - modelled
		if extra < 0 {
			extra = 0
		}
		if cumExtra+extra > rawFraction*preRawEntropy {
			break
		}
		cumExtra += extra
		raw.count += uint64(g.count) * uint64(len(g.members))
		raw.members = append(raw.members, g.members...)
		cut = i
	}
	groups = groups[:cut]

	// Step 4: quantize. Each entry (real groups, then the raw band if
	// present) gets floor(count*M/total), clamped to at least 1.
	type entry struct {
		pdf     uint32
		members []uint16
		isRaw   bool
	}
	var entries []entry
	for _, g := range groups {
		mass := uint64(g.count) * uint64(len(g.members))
		q := uint32(mass * uint64(M) / total)
		if q < 1 {
			q = 1
		}
		entries = append(entries, entry{pdf: q, members: g.members})
	}
	// The raw band always gets an entry, even when step 3 absorbed
	// nothing: its CDF start is serialized as a u16, which can represent
	// any value up to M-1 but not M itself, so a table with zero raw
	// mass would otherwise serialize rawStart=M as 0 and corrupt the
	// table on read-back. Reserving the band's minimum one unit of PDF
	// keeps the serialized start within range; no real symbol is ever
	// assigned to this placeholder, so it never affects encode/decode.
	var rawQ uint32 = 1
	if len(raw.members) > 0 {
		rawQ = uint32(raw.count * uint64(M) / total)
		if rawQ < 1 {
			rawQ = 1
		}
	}
	entries = append(entries, entry{pdf: rawQ, members: raw.members, isRaw: true})

	// Step 5 (part of step 4/correction): repair the quantized sum to
	// exactly M, preferring to touch the entry with the least relative
	// entropy impact.
	var sum uint64
	for _, e := range entries {
		sum += uint64(e.pdf)
	}
	curSum := float64(sum)
	for sum > uint64(M) {
		best := -1
		bestCost := math.Inf(1)
		for i, e := range entries {
			if e.pdf <= 1 {
				continue
			}
			n := float64(len(e.members))
			if n == 0 {
				n = 1
			}
			oldP := float64(e.pdf) / curSum
			newP := float64(e.pdf-1) / curSum
			cost := n * (-math.Log2(newP) - (-math.Log2(oldP)))
			if best == -1 || cost < bestCost {
				best, bestCost = i, cost
			}
		}
		if best == -1 {
			break
		}
		entries[best].pdf--
		sum--
	}
	for sum < uint64(M) {
		best := 0
		for i, e := range entries {
			if e.pdf > entries[best].pdf {
				best = i
			}
		}
		entries[best].pdf++
		sum++
	}

	// Step 6 (merge): entries sharing an identical quantized PDF are
	// folded into one group, aggregating members and summing mass.
	var rawEntry *entry
	merged := make([]entry, 0, len(entries))
	seen := map[uint32]int{}
	for _, e := range entries {
		if e.isRaw {
			re := e
			rawEntry = &re
			continue
		}
		if idx, ok := seen[e.pdf]; ok {
			merged[idx].pdf += e.pdf
			merged[idx].members = append(merged[idx].members, e.members...)
			continue
		}
		seen[e.pdf] = len(merged)
		merged = append(merged, e)
	}

	// Step 7: re-sort, fast-path groups (single member) before slow-path
	// groups, preserving relative order within each class.
	sort.SliceStable(merged, func(i, j int) bool {
		iFast := len(merged[i].members) == 1
		jFast := len(merged[j].members) == 1
		return iFast && !jFast
	})

	t := &Table{
		symbolGroup: map[uint16]int{},
		symbolSub:   map[uint16]uint32{},
	}
	var cdf uint32
	for gi, e := range merged {
		g := Group{CDFStart: cdf, PDF: e.pdf, Members: e.members}
		t.groups = append(t.groups, g)
		for si, m := range e.members {
			t.symbolGroup[m] = gi
			t.symbolSub[m] = uint32(si)
		}
		cdf += e.pdf
	}
	// The merge loop above always finds exactly one raw entry (see the
	// reservation above), so rawEntry is never nil here.
	t.rawStart = cdf
	t.rawPDF = rawEntry.pdf
	for _, m := range rawEntry.members {
		t.symbolGroup[m] = -1
	}
	return t, nil
}

// GroupRecord is the on-disk shape of one CDF-table entry: a CDF start
// and its member symbols. A raw-band record has no members.
type GroupRecord struct {
	CDFStart uint32
	Members  []uint16
}

// GenerateGroupRecords returns the table's groups in on-disk order,
// terminated by the raw group (possibly with zero mass) and a sentinel
// whose CDF start is M-1, matching the global-table serialization
// format.
func (t *Table) GenerateGroupRecords() []GroupRecord {
	recs := make([]GroupRecord, 0, len(t.groups)+2)
	for _, g := range t.groups {
		recs = append(recs, GroupRecord{CDFStart: g.CDFStart, Members: g.Members})
	}
	recs = append(recs, GroupRecord{CDFStart: t.rawStart})
	recs = append(recs, GroupRecord{CDFStart: M - 1})
	return recs
}

// NewTableFromGroups reconstructs a decode-side table from its on-disk
// group-record list (as produced by GenerateGroupRecords): the trailing
// two records are the raw band and the sentinel.
func NewTableFromGroups(recs []GroupRecord) (*Table, error) {
	if len(recs) < 2 {
		return nil, errShortGroupList
	}
	raw := recs[len(recs)-2]
	real := recs[:len(recs)-2]

	t := &Table{
		symbolGroup: map[uint16]int{},
		symbolSub:   map[uint16]uint32{},
	}
	for gi, r := range real {
		var pdf uint32
		if gi+1 < len(real) {
			pdf = real[gi+1].CDFStart - r.CDFStart
		} else {
			pdf = raw.CDFStart - r.CDFStart
		}
		t.groups = append(t.groups, Group{CDFStart: r.CDFStart, PDF: pdf, Members: r.Members})
		for si, m := range r.Members {
			t.symbolGroup[m] = gi
			t.symbolSub[m] = uint32(si)
		}
	}
	t.rawStart = raw.CDFStart
	if t.rawStart < M {
		t.rawPDF = M - t.rawStart
	} else {
		t.rawPDF = 0
	}
	return t, nil
}

// groupEnd returns the exclusive CDF boundary of group idx.
func (t *Table) groupEnd(idx int) uint32 {
	if idx+1 < len(t.groups) {
		return t.groups[idx+1].CDFStart
	}
	return t.rawStart
}

// pivot returns the index of the first slow-path (multi-member) group,
// or len(groups) if every group is fast-path.
func (t *Table) pivot() int {
	for i, g := range t.groups {
		if len(g.Members) != 1 {
			return i
		}
	}
	return len(t.groups)
}

// lookupByProb resolves a cumulative probability to its containing
// group, using the fast-path/slow-path boundary (pivotCDF) to start the
// scan past every single-member group whenever possible.
func (t *Table) lookupByProb(p uint32) (idx int, isRaw bool) {
	if p >= t.rawStart {
		return -1, true
	}
	start := 0
	piv := t.pivot()
	if piv < len(t.groups) && p >= t.groups[piv].CDFStart {
		start = piv
	}
	for i := start; i < len(t.groups); i++ {
		if p < t.groupEnd(i) {
			return i, false
		}
	}
	return len(t.groups) - 1, false
}

// symbolAt returns the member symbol at position sub within group idx.
func (t *Table) symbolAt(idx int, sub uint32) uint16 {
	return t.groups[idx].Members[sub]
}

// MemoryFootprint estimates the table's resident size in bytes: one
// Group header plus its member slice per entry.
func (t *Table) MemoryFootprint() int {
	n := 0
	for _, g := range t.groups {
		n += 8 + 2*len(g.Members)
	}
	return n + 16
}
