// Package block implements the tile container: one independently
// rANS-coded wavelet pyramid plus the header fields needed to locate and
// decode it. A block's body is a reversed rANS stream that, replayed
// against a shared symbol table, yields the tile's residuals top layer
// first.
package block

import (
	"fmt"

	"github.com/pspoerri/heightcif/internal/rans"
	"github.com/pspoerri/heightcif/internal/wavelet"
)

// Header is the on-disk portion of a block record. A block's root
// parentVals are not stored here — for ordinary tiles they live in the
// decoded parent-values image; for the parent-values tile itself they
// are stored alongside it in the container header.
type Header struct {
	BlockPos       uint32
	FinalRansState uint64
}

// Corrupt reports whether the header fails the container's single
// validity check: a zero finalRansState can never result from a real
// encode (the encoder starts at STATE_MIN and keeps its state within
// [STATE_MIN, STATE_MAX]).
func (h Header) Corrupt() bool { return h.FinalRansState == 0 }

// EncodeBlock builds the encode-side wavelet pyramid for one tile
// eagerly and exposes the pieces needed to entropy-code it: the root
// parent values and the top-first residual stream.
type EncodeBlock struct {
	layers []wavelet.Layer
	root   []uint16
}

// NewEncodeBlock runs the wavelet transform over one tile's pixels.
func NewEncodeBlock(pixels []uint16, size wavelet.Size) *EncodeBlock {
	layers, root := wavelet.Decompose(pixels, size)
	return &EncodeBlock{layers: layers, root: root}
}

// RootValues returns the tile's 1-4 root parent values.
func (b *EncodeBlock) RootValues() []uint16 { return b.root }

// Residuals returns the tile's full residual stream, top layer first —
// the order histogram collection and body encoding both expect.
func (b *EncodeBlock) Residuals() []uint16 { return wavelet.Residuals(b.layers) }

// WriteBody entropy-codes the tile's residuals against table. Symbols
// are fed to the encoder in reverse of Residuals' order, so that a
// decoder popping the resulting stack recovers them top layer first. It
// returns the emitted renorm/literal blocks and the encoder's final
// state, which the caller stores in the block's Header.
func (b *EncodeBlock) WriteBody(table *rans.Table) (blocks []uint16, finalState uint64) {
	residuals := b.Residuals()
	e := rans.NewEncoder()
	for i := len(residuals) - 1; i >= 0; i-- {
		e.AddSymbol(table, residuals[i])
	}
	return e.Blocks(), e.FinalState()
}

// DecodeBlock wraps a lazy, layer-by-layer decoder over one tile's body.
// Nothing is decoded until DecodeToLevel or GetPixel asks for it.
type DecodeBlock struct {
	table    *rans.Table
	dec      *rans.Decoder
	sizes    []wavelet.Size // leaf-first; sizes[len-1]'s parent is the root
	allSizes []wavelet.Size // sizes plus the root size appended
	rootVals []uint16

	level  int // index into sizes currently materialized; -1 = nothing beyond root
	pixels []uint16
}

// NewDecodeBlock constructs a lazy decoder for a tile of the given leaf
// size. blocks and finalState are the header/body fields read from the
// container; rootVals are the tile's root parent values (already
// resolved by the caller, e.g. from the parent-values image).
func NewDecodeBlock(leafSize wavelet.Size, rootVals []uint16, blocks []uint16, finalState uint64, table *rans.Table) *DecodeBlock {
	sizes := wavelet.LayerSizes(leafSize)
	allSizes := make([]wavelet.Size, len(sizes)+1)
	copy(allSizes, sizes)
	allSizes[len(sizes)] = sizes[len(sizes)-1].Parent()
	return &DecodeBlock{
		table:    table,
		dec:      rans.NewDecoder(blocks, finalState),
		sizes:    sizes,
		allSizes: allSizes,
		rootVals: rootVals,
		level:    -1,
	}
}

// TopLOD is the level reported for a block that hasn't materialized any
// layer yet: one past the coarsest real wavelet layer, i.e. "root
// values only, no rANS activity."
func (b *DecodeBlock) TopLOD() int { return len(b.sizes) }

// CurrentLevel is the finest (lowest-numbered) layer currently
// materialized, or TopLOD if none has been.
func (b *DecodeBlock) CurrentLevel() int {
	if b.level == -1 {
		return b.TopLOD()
	}
	return b.level
}

// DecodeToLevel materializes layers, coarsest first, until level target
// is available. It is a no-op if target is already at or coarser than
// the current level.
func (b *DecodeBlock) DecodeToLevel(target int) error {
	if target < 0 || target > b.TopLOD() {
		return fmt.Errorf("block: level %d out of range [0,%d]", target, b.TopLOD())
	}
	cur := b.CurrentLevel()
	for lvl := cur - 1; lvl >= target; lvl-- {
		var parent []uint16
		if lvl == len(b.sizes)-1 {
			parent = b.rootVals
		} else {
			parent = b.pixels
		}
		size := b.sizes[lvl]
		n := size.WaveletCount()
		wavelets := make([]uint16, n)
		for i := uint32(0); i < n; i++ {
			sym, err := b.dec.ReadSymbol(b.table)
			if err != nil {
				return fmt.Errorf("block: reading symbol %d/%d at level %d: %w", i, n, lvl, err)
			}
			wavelets[i] = sym
		}
		out, err := wavelet.ReconstructLayer(size, parent, wavelets)
		if err != nil {
			return err
		}
		b.pixels = out
		b.level = lvl
	}
	return nil
}

// GetPixel reads a single tile-local pixel, decoding only the layers
// required to reach it. Coordinates that land on a root-aligned
// position after shifting are served directly from rootVals with no
// rANS activity.
func (b *DecodeBlock) GetPixel(x, y uint32) (uint16, error) {
	lvl := 0
	cx, cy := x, y
	for cx%2 == 0 && cy%2 == 0 && lvl < len(b.allSizes)-1 {
		cx, cy = cx/2, cy/2
		lvl++
	}
	if lvl == len(b.allSizes)-1 {
		rootSize := b.allSizes[lvl]
		return b.rootVals[cy*rootSize.W+cx], nil
	}
	if err := b.DecodeToLevel(lvl); err != nil {
		return 0, err
	}
	// An earlier call may already have materialized a finer layer than
	// lvl; read from whichever layer is current.
	cur := uint(b.level)
	s := b.sizes[cur]
	return b.pixels[(y>>cur)*s.W+(x>>cur)], nil
}

// BottomLevelPixels fully decodes the tile and returns its leaf-resolution
// pixel grid.
func (b *DecodeBlock) BottomLevelPixels() ([]uint16, error) {
	if err := b.DecodeToLevel(0); err != nil {
		return nil, err
	}
	return b.pixels, nil
}

// MemoryFootprint estimates the block's resident size in bytes: the
// currently materialized pixel buffer plus fixed bookkeeping.
func (b *DecodeBlock) MemoryFootprint() int {
	n := 64 + 2*len(b.rootVals)
	if b.pixels != nil {
		n += 2 * len(b.pixels)
	}
	return n
}
