package block

import (
	"math/rand"
	"testing"

	"github.com/pspoerri/heightcif/internal/rans"
	"github.com/pspoerri/heightcif/internal/wavelet"
)

func buildTable(t *testing.T, residuals []uint16) *rans.Table {
	t.Helper()
	counts := map[uint16]uint32{}
	for _, r := range residuals {
		counts[r]++
	}
	if len(counts) == 0 {
		// A tile with no residuals (e.g. 1x1) never reads the table.
		return nil
	}
	table, err := rans.NewTableFromCounts(counts)
	if err != nil {
		t.Fatalf("NewTableFromCounts: %v", err)
	}
	return table
}

func TestBlockRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		w, h uint32
	}{
		{"full-tile", 32, 32},
		{"small-tile", 4, 4},
		{"edge-tile", 17, 9},
		{"single-pixel", 1, 1},
		{"wide-strip", 32, 3},
	}
	rng := rand.New(rand.NewSource(11))
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			size := wavelet.Size{W: c.w, H: c.h}
			pixels := make([]uint16, c.w*c.h)
			for i := range pixels {
				pixels[i] = uint16(rng.Intn(65536))
			}

			eb := NewEncodeBlock(pixels, size)
			table := buildTable(t, eb.Residuals())
			blocks, finalState := eb.WriteBody(table)

			db := NewDecodeBlock(size, eb.RootValues(), blocks, finalState, table)
			for y := uint32(0); y < c.h; y++ {
				for x := uint32(0); x < c.w; x++ {
					got, err := db.GetPixel(x, y)
					if err != nil {
						t.Fatalf("GetPixel(%d,%d): %v", x, y, err)
					}
					want := pixels[y*c.w+x]
					if got != want {
						t.Fatalf("GetPixel(%d,%d) = %d, want %d", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestBlockRootShortcutAvoidsDecode(t *testing.T) {
	size := wavelet.Size{W: 32, H: 32}
	pixels := make([]uint16, 32*32)
	for i := range pixels {
		pixels[i] = uint16(i)
	}
	eb := NewEncodeBlock(pixels, size)
	table := buildTable(t, eb.Residuals())
	blocks, finalState := eb.WriteBody(table)

	db := NewDecodeBlock(size, eb.RootValues(), blocks, finalState, table)
	if _, err := db.GetPixel(0, 0); err != nil {
		t.Fatalf("GetPixel(0,0): %v", err)
	}
	if db.CurrentLevel() != db.TopLOD() {
		t.Fatalf("reading a root-aligned pixel materialized a layer: level=%d, topLOD=%d", db.CurrentLevel(), db.TopLOD())
	}

	if _, err := db.GetPixel(1, 0); err != nil {
		t.Fatalf("GetPixel(1,0): %v", err)
	}
	if db.CurrentLevel() == db.TopLOD() {
		t.Fatal("reading a non-root-aligned pixel did not materialize any layer")
	}
}

func TestBottomLevelPixelsMatchesGetPixel(t *testing.T) {
	size := wavelet.Size{W: 16, H: 16}
	rng := rand.New(rand.NewSource(5))
	pixels := make([]uint16, 16*16)
	for i := range pixels {
		pixels[i] = uint16(rng.Intn(65536))
	}
	eb := NewEncodeBlock(pixels, size)
	table := buildTable(t, eb.Residuals())
	blocks, finalState := eb.WriteBody(table)

	db := NewDecodeBlock(size, eb.RootValues(), blocks, finalState, table)
	bottom, err := db.BottomLevelPixels()
	if err != nil {
		t.Fatalf("BottomLevelPixels: %v", err)
	}
	for i := range pixels {
		if bottom[i] != pixels[i] {
			t.Fatalf("pixel %d: got %d, want %d", i, bottom[i], pixels[i])
		}
	}
	for y := uint32(0); y < size.H; y++ {
		for x := uint32(0); x < size.W; x++ {
			got, err := db.GetPixel(x, y)
			if err != nil {
				t.Fatalf("GetPixel(%d,%d): %v", x, y, err)
			}
			if want := bottom[y*size.W+x]; got != want {
				t.Fatalf("GetPixel(%d,%d) = %d, BottomLevelPixels has %d", x, y, got, want)
			}
		}
	}
}
