package wavelet

import (
	"math/rand"
	"testing"
)

func reconstructAll(t *testing.T, layers []Layer, root []uint16) []uint16 {
	t.Helper()
	cur := root
	for i := len(layers) - 1; i >= 0; i-- {
		out, err := ReconstructLayer(layers[i].Size, cur, layers[i].Wavelets)
		if err != nil {
			t.Fatalf("ReconstructLayer(%dx%d): %v", layers[i].Size.W, layers[i].Size.H, err)
		}
		cur = out
	}
	return cur
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		w, h uint32
		gen  func(x, y uint32) uint16
	}{
		{"constant", 8, 8, func(x, y uint32) uint16 { return 4242 }},
		{"checkerboard", 8, 8, func(x, y uint32) uint16 {
			if (x+y)%2 == 0 {
				return 0x0000
			}
			return 0xFFFF
		}},
		{"horizontal-gradient", 16, 1, func(x, y uint32) uint16 { return uint16(x) }},
		{"2d-gradient", 17, 13, func(x, y uint32) uint16 { return uint16(x + y) }},
		{"single-pixel", 1, 1, func(x, y uint32) uint16 { return 7 }},
		{"odd-square", 5, 5, func(x, y uint32) uint16 { return uint16(x*5 + y) }},
		{"single-row", 9, 1, func(x, y uint32) uint16 { return uint16(x * 100) }},
		{"single-column", 1, 9, func(x, y uint32) uint16 { return uint16(y * 100) }},
		{"wraparound", 6, 6, func(x, y uint32) uint16 { return uint16(65530 + x + y) }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			size := Size{W: c.w, H: c.h}
			pixels := make([]uint16, c.w*c.h)
			for y := uint32(0); y < c.h; y++ {
				for x := uint32(0); x < c.w; x++ {
					pixels[y*c.w+x] = c.gen(x, y)
				}
			}
			layers, root := Decompose(pixels, size)
			got := reconstructAll(t, layers, root)
			for i := range pixels {
				if got[i] != pixels[i] {
					t.Fatalf("pixel %d: got %d, want %d", i, got[i], pixels[i])
				}
			}
		})
	}
}

func TestRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		w := uint32(1 + rng.Intn(40))
		h := uint32(1 + rng.Intn(40))
		size := Size{W: w, H: h}
		pixels := make([]uint16, w*h)
		for i := range pixels {
			pixels[i] = uint16(rng.Intn(65536))
		}
		layers, root := Decompose(pixels, size)
		got := reconstructAll(t, layers, root)
		for i := range pixels {
			if got[i] != pixels[i] {
				t.Fatalf("trial %d (%dx%d): pixel %d: got %d, want %d", trial, w, h, i, got[i], pixels[i])
			}
		}
	}
}

func TestConstantImageHasZeroResiduals(t *testing.T) {
	size := Size{W: 8, H: 8}
	pixels := make([]uint16, 64)
	for i := range pixels {
		pixels[i] = 1000
	}
	layers, _ := Decompose(pixels, size)
	for _, l := range layers {
		for _, w := range l.Wavelets {
			if w != 0 {
				t.Fatalf("constant image produced nonzero residual %d at layer %dx%d", w, l.Size.W, l.Size.H)
			}
		}
	}
}

func TestReconstructLayerRejectsMismatchedLength(t *testing.T) {
	size := Size{W: 4, H: 4}
	parentVals := make([]uint16, size.ParentW()*size.ParentH())
	_, err := ReconstructLayer(size, parentVals, []uint16{1, 2, 3})
	if err == nil {
		t.Fatal("expected an error for a wavelet-count mismatch, got nil")
	}
}

func TestSizeIsRoot(t *testing.T) {
	cases := []struct {
		w, h uint32
		root bool
	}{
		{2, 2, true},
		{4, 4, true},
		{8, 8, false},
		{4, 1, true},
		{8, 1, false},
		{1, 1, true},
		{3, 3, true},
	}
	for _, c := range cases {
		s := Size{W: c.w, H: c.h}
		if got := s.IsRoot(); got != c.root {
			t.Errorf("Size{%d,%d}.IsRoot() = %v, want %v", c.w, c.h, got, c.root)
		}
	}
}
