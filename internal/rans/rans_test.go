package rans

import (
	"math/rand"
	"testing"
)

func encodeAll(t *testing.T, table *Table, symbols []uint16) *Encoder {
	t.Helper()
	e := NewEncoder()
	// rANS is a stack: encode in reverse so ReadSymbol recovers the
	// original forward order.
	for i := len(symbols) - 1; i >= 0; i-- {
		e.AddSymbol(table, symbols[i])
	}
	return e
}

func decodeAll(t *testing.T, table *Table, e *Encoder, n int) []uint16 {
	t.Helper()
	d := NewDecoder(e.Blocks(), e.FinalState())
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		sym, err := d.ReadSymbol(table)
		if err != nil {
			t.Fatalf("ReadSymbol at %d: %v", i, err)
		}
		out[i] = sym
	}
	return out
}

func histogram(symbols []uint16) map[uint16]uint32 {
	h := map[uint16]uint32{}
	for _, s := range symbols {
		h[s]++
	}
	return h
}

func TestRoundTripSkewed(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	symbols := make([]uint16, 5000)
	for i := range symbols {
		// A heavily skewed distribution: a handful of hot symbols plus a
		// long tail of rare ones that should land in the raw band.
		switch {
		case rng.Intn(100) < 80:
			symbols[i] = uint16(rng.Intn(3))
		case rng.Intn(100) < 90:
			symbols[i] = uint16(3 + rng.Intn(10))
		default:
			symbols[i] = uint16(1000 + rng.Intn(50000))
		}
	}
	table, err := NewTableFromCounts(histogram(symbols))
	if err != nil {
		t.Fatalf("NewTableFromCounts: %v", err)
	}
	e := encodeAll(t, table, symbols)
	got := decodeAll(t, table, e, len(symbols))
	for i := range symbols {
		if got[i] != symbols[i] {
			t.Fatalf("symbol %d: got %d, want %d", i, got[i], symbols[i])
		}
	}
}

func TestRoundTripUniform(t *testing.T) {
	symbols := make([]uint16, 2048)
	for i := range symbols {
		symbols[i] = uint16(i % 256)
	}
	table, err := NewTableFromCounts(histogram(symbols))
	if err != nil {
		t.Fatalf("NewTableFromCounts: %v", err)
	}
	e := encodeAll(t, table, symbols)
	got := decodeAll(t, table, e, len(symbols))
	for i := range symbols {
		if got[i] != symbols[i] {
			t.Fatalf("symbol %d: got %d, want %d", i, got[i], symbols[i])
		}
	}
}

func TestRoundTripSingleSymbol(t *testing.T) {
	symbols := make([]uint16, 100)
	for i := range symbols {
		symbols[i] = 42
	}
	table, err := NewTableFromCounts(histogram(symbols))
	if err != nil {
		t.Fatalf("NewTableFromCounts: %v", err)
	}
	e := encodeAll(t, table, symbols)
	got := decodeAll(t, table, e, len(symbols))
	for i := range symbols {
		if got[i] != 42 {
			t.Fatalf("symbol %d: got %d, want 42", i, got[i])
		}
	}
}

func TestQuantizedPDFsSumToM(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	symbols := make([]uint16, 4000)
	for i := range symbols {
		symbols[i] = uint16(rng.Intn(1000))
	}
	table, err := NewTableFromCounts(histogram(symbols))
	if err != nil {
		t.Fatalf("NewTableFromCounts: %v", err)
	}
	var sum uint64
	for _, g := range table.groups {
		sum += uint64(g.PDF)
	}
	sum += uint64(table.rawPDF)
	if sum != uint64(M) {
		t.Fatalf("quantized PDFs (incl. raw) sum to %d, want %d", sum, M)
	}
}

// TestRoundTripNoRawBand exercises a small, near-balanced histogram
// where step 3 absorbs nothing into the raw band: moving even the rarest
// group into it would cost more extra bits than rawFraction of the
// entropy allows, so raw.members is empty and rawStart lands at exactly M
// minus the real groups' mass. This
// is the scenario that previously serialized rawStart=M as 0 and
// corrupted the decode table.
func TestRoundTripNoRawBand(t *testing.T) {
	symbols := make([]uint16, 0, 1000)
	for i := 0; i < 520; i++ {
		symbols = append(symbols, 0)
	}
	for i := 0; i < 480; i++ {
		symbols = append(symbols, 1)
	}
	table, err := NewTableFromCounts(histogram(symbols))
	if err != nil {
		t.Fatalf("NewTableFromCounts: %v", err)
	}
	if table.rawStart >= M {
		t.Fatalf("rawStart = %d, want < %d (must be representable as u16 on the wire)", table.rawStart, M)
	}

	recs := table.GenerateGroupRecords()
	decTable, err := NewTableFromGroups(recs)
	if err != nil {
		t.Fatalf("NewTableFromGroups: %v", err)
	}
	if decTable.rawStart != table.rawStart || decTable.rawPDF != table.rawPDF {
		t.Fatalf("decoded raw band = (start=%d, pdf=%d), want (start=%d, pdf=%d)",
			decTable.rawStart, decTable.rawPDF, table.rawStart, table.rawPDF)
	}

	e := encodeAll(t, table, symbols)
	got := decodeAll(t, decTable, e, len(symbols))
	for i := range symbols {
		if got[i] != symbols[i] {
			t.Fatalf("symbol %d: got %d, want %d", i, got[i], symbols[i])
		}
	}
}

func TestGroupRecordRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	symbols := make([]uint16, 3000)
	for i := range symbols {
		symbols[i] = uint16(rng.Intn(500))
	}
	table, err := NewTableFromCounts(histogram(symbols))
	if err != nil {
		t.Fatalf("NewTableFromCounts: %v", err)
	}
	recs := table.GenerateGroupRecords()
	decTable, err := NewTableFromGroups(recs)
	if err != nil {
		t.Fatalf("NewTableFromGroups: %v", err)
	}

	e := encodeAll(t, table, symbols)
	got := decodeAll(t, decTable, e, len(symbols))
	for i := range symbols {
		if got[i] != symbols[i] {
			t.Fatalf("symbol %d: got %d, want %d", i, got[i], symbols[i])
		}
	}
}
