package heightcif

import (
	"bytes"
	"testing"

	"github.com/pspoerri/heightcif/internal/rans"
)

// TestWriteReadTableNoRawBand covers the wire-serialization path for a
// histogram where nothing gets absorbed into the raw band, so rawStart
// sits just under M. writeTable narrows CDFStart to a u16; this is the
// case that used to wrap M to 0 and corrupt the table on read-back.
func TestWriteReadTableNoRawBand(t *testing.T) {
	counts := map[uint16]uint32{0: 520, 1: 480}
	table, err := rans.NewTableFromCounts(counts)
	if err != nil {
		t.Fatalf("NewTableFromCounts: %v", err)
	}

	var buf bytes.Buffer
	if err := writeTable(&buf, table); err != nil {
		t.Fatalf("writeTable: %v", err)
	}
	decoded, err := readTable(&buf)
	if err != nil {
		t.Fatalf("readTable: %v", err)
	}

	e := rans.NewEncoder()
	symbols := []uint16{0, 1, 0, 0, 1, 0, 1, 1}
	for i := len(symbols) - 1; i >= 0; i-- {
		e.AddSymbol(table, symbols[i])
	}
	d := rans.NewDecoder(e.Blocks(), e.FinalState())
	for i, want := range symbols {
		got, err := d.ReadSymbol(decoded)
		if err != nil {
			t.Fatalf("ReadSymbol at %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("symbol %d: got %d, want %d", i, got, want)
		}
	}
}

// TestWriteReadTableNil covers the degenerate zero-residual case.
func TestWriteReadTableNil(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTable(&buf, nil); err != nil {
		t.Fatalf("writeTable: %v", err)
	}
	decoded, err := readTable(&buf)
	if err != nil {
		t.Fatalf("readTable: %v", err)
	}
	if decoded != nil {
		t.Fatalf("readTable(nil-written) = %v, want nil", decoded)
	}
}
