package heightcif

import (
	"bytes"
	"math/rand"
	"testing"
)

type memReaderAt []byte

func (m memReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return bytes.NewReader(m).ReadAt(p, off)
}

func openEncoded(t *testing.T, pixels []uint16, width, height, blockSize uint32) *Image {
	t.Helper()
	data, err := Encode(pixels, width, height, blockSize)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, err := Open(memReaderAt(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return img
}

func constantPixels(w, h uint32, v uint16) []uint16 {
	out := make([]uint16, w*h)
	for i := range out {
		out[i] = v
	}
	return out
}

func checkerboard(w, h uint32, a, b uint16) []uint16 {
	out := make([]uint16, w*h)
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			if (x+y)%2 == 0 {
				out[y*w+x] = a
			} else {
				out[y*w+x] = b
			}
		}
	}
	return out
}

func gradient(w, h uint32) []uint16 {
	out := make([]uint16, w*h)
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			out[y*w+x] = uint16(x*7 + y*3)
		}
	}
	return out
}

func randomPixels(w, h uint32, seed int64) []uint16 {
	r := rand.New(rand.NewSource(seed))
	out := make([]uint16, w*h)
	for i := range out {
		out[i] = uint16(r.Intn(1 << 16))
	}
	return out
}

func assertBottomLevelMatches(t *testing.T, img *Image, want []uint16, width, height uint32) {
	t.Helper()
	got, err := img.GetBottomLevelPixels()
	if err != nil {
		t.Fatalf("GetBottomLevelPixels: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixel %d (x=%d,y=%d) = %d, want %d", i, uint32(i)%width, uint32(i)/width, got[i], want[i])
		}
	}
}

func TestImageRoundTrip(t *testing.T) {
	cases := []struct {
		name              string
		width, height, bs uint32
		pixels            []uint16
	}{
		{"constant-exact-multiple", 64, 64, 32, constantPixels(64, 64, 500)},
		{"checkerboard", 64, 64, 16, checkerboard(64, 64, 0, 65535)},
		{"gradient-uneven", 50, 37, 16, gradient(50, 37)},
		{"single-tile-equals-image", 20, 20, 32, gradient(20, 20)},
		{"blocksize-four", 19, 23, 4, randomPixels(19, 23, 1)},
		{"random-large", 129, 97, 32, randomPixels(129, 97, 2)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			img := openEncoded(t, c.pixels, c.width, c.height, c.bs)
			assertBottomLevelMatches(t, img, c.pixels, c.width, c.height)
		})
	}
}

func TestGetPixelMatchesGetBottomLevelPixels(t *testing.T) {
	width, height, bs := uint32(67), uint32(53), uint32(16)
	pixels := randomPixels(width, height, 3)
	img := openEncoded(t, pixels, width, height, bs)

	for y := uint32(0); y < height; y += 7 {
		for x := uint32(0); x < width; x += 5 {
			img.ClearBlockCache()
			v, err := img.GetPixelErr(x, y)
			if err != nil {
				t.Fatalf("GetPixelErr(%d,%d): %v", x, y, err)
			}
			if want := pixels[y*width+x]; v != want {
				t.Fatalf("GetPixel(%d,%d) = %d, want %d", x, y, v, want)
			}
		}
	}
}

func TestUniformImageCacheClearsToFixedOverhead(t *testing.T) {
	width, height, bs := uint32(64), uint32(64), uint32(16)
	pixels := constantPixels(width, height, 1234)
	img := openEncoded(t, pixels, width, height, bs)

	if _, err := img.GetBottomLevelPixels(); err != nil {
		t.Fatalf("GetBottomLevelPixels: %v", err)
	}
	if img.MemoryUsage() <= fixedOverhead {
		t.Fatalf("expected MemoryUsage above fixedOverhead after decoding, got %d", img.MemoryUsage())
	}
	img.ClearBlockCache()
	if got := img.MemoryUsage(); got != fixedOverhead {
		t.Fatalf("MemoryUsage after ClearBlockCache = %d, want %d", got, fixedOverhead)
	}
}

func TestCoarseReadDoesNotInstantiateOtherBlocks(t *testing.T) {
	width, height, bs := uint32(64), uint32(64), uint32(32)
	pixels := gradient(width, height)
	img := openEncoded(t, pixels, width, height, bs)

	// A root-aligned read (tile-corner, divisible by blockSize/2 down to
	// the coarsest level) must be served from the parent-values image
	// alone, instantiating no block.
	v, err := img.GetPixelErr(0, 0)
	if err != nil {
		t.Fatalf("GetPixelErr: %v", err)
	}
	_ = v
	for i, b := range img.blocks {
		if b != nil {
			t.Fatalf("tile %d instantiated by a root-aligned read", i)
		}
	}
}

func TestSinglePixelImage(t *testing.T) {
	img := openEncoded(t, []uint16{42}, 1, 1, 4)
	assertBottomLevelMatches(t, img, []uint16{42}, 1, 1)
}

func TestFormatErrorOnBadMagic(t *testing.T) {
	data, err := Encode(constantPixels(8, 8, 1), 8, 8, 4)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data[0] ^= 0xFF
	if _, err := Open(memReaderAt(data), int64(len(data))); err == nil {
		t.Fatal("expected FormatError for corrupted magic, got nil")
	} else if _, ok := err.(*FormatError); !ok {
		t.Fatalf("expected *FormatError, got %T: %v", err, err)
	}
}
