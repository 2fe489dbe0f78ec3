package heightcif

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pspoerri/heightcif/internal/block"
	"github.com/pspoerri/heightcif/internal/rans"
	"github.com/pspoerri/heightcif/internal/wavelet"
)

// Encode builds a complete CIF file from a row-major pixel grid.
// blockSize must be a power of two, at least 4.
func Encode(pixels []uint16, width, height, blockSize uint32) ([]byte, error) {
	if blockSize < 4 || blockSize&(blockSize-1) != 0 {
		return nil, fmt.Errorf("heightcif: blockSize %d must be a power of two >= 4", blockSize)
	}
	if uint64(width)*uint64(height) != uint64(len(pixels)) {
		return nil, fmt.Errorf("heightcif: pixel buffer has %d entries, want %d for %dx%d", len(pixels), width*height, width, height)
	}

	wb := widthInBlocks(width, blockSize)
	hb := heightInBlocks(height, blockSize)
	numTiles := wb * hb

	encBlocks := make([]*block.EncodeBlock, numTiles)
	rootSizes := make([]wavelet.Size, numTiles)
	roots := make([][]uint16, numTiles)
	histogram := map[uint16]uint32{}

	for by := uint32(0); by < hb; by++ {
		for bx := uint32(0); bx < wb; bx++ {
			idx := by*wb + bx
			x, y, size := tileBounds(bx, by, width, height, blockSize)
			tilePixels := extractTile(pixels, width, x, y, size)
			eb := block.NewEncodeBlock(tilePixels, size)
			encBlocks[idx] = eb
			rootSizes[idx] = wavelet.RootSize(size)
			roots[idx] = eb.RootValues()
			for _, r := range eb.Residuals() {
				histogram[r]++
			}
		}
	}

	globalTable, err := buildTableOrNil(histogram)
	if err != nil {
		return nil, fmt.Errorf("heightcif: building global table: %w", err)
	}

	parentPixels, parentSize := buildParentImage(roots, rootSizes, wb, hb)
	parentEB := block.NewEncodeBlock(parentPixels, parentSize)
	parentHistogram := map[uint16]uint32{}
	for _, r := range parentEB.Residuals() {
		parentHistogram[r]++
	}
	parentTable, err := buildTableOrNil(parentHistogram)
	if err != nil {
		return nil, fmt.Errorf("heightcif: building parent-image table: %w", err)
	}

	var buf bytes.Buffer

	// 1. File header (blockBodyStart patched at the end).
	hdr := make([]byte, headerSize)
	binary.LittleEndian.PutUint16(hdr[0:2], Magic)
	binary.LittleEndian.PutUint16(hdr[2:4], Version)
	binary.LittleEndian.PutUint32(hdr[4:8], width)
	binary.LittleEndian.PutUint32(hdr[8:12], height)
	binary.LittleEndian.PutUint32(hdr[12:16], blockSize)
	buf.Write(hdr)
	blockBodyStartOffset := 16 // byte offset of the blockBodyStart field within hdr

	// 2. Ordinary-block global CDF table.
	if err := writeTable(&buf, globalTable); err != nil {
		return nil, fmt.Errorf("heightcif: writing global table: %w", err)
	}

	// 3. Parent-values image.
	if err := writeUint16Vector(&buf, parentEB.RootValues()); err != nil {
		return nil, fmt.Errorf("heightcif: writing parent-image root values: %w", err)
	}
	if err := writeTable(&buf, parentTable); err != nil {
		return nil, fmt.Errorf("heightcif: writing parent-image table: %w", err)
	}
	parentBodyBlocks, parentFinalState := parentEB.WriteBody(parentTable)
	if err := writeBlockHeader(&buf, 0, parentFinalState); err != nil {
		return nil, fmt.Errorf("heightcif: writing parent-image block header: %w", err)
	}
	if err := writeBlockBody(&buf, parentBodyBlocks); err != nil {
		return nil, fmt.Errorf("heightcif: writing parent-image body: %w", err)
	}

	// 4. Ordinary-block headers (body offsets filled in after bodies are
	// serialized into a side buffer, so headers can precede bodies on disk).
	bodies := make([][]uint16, numTiles)
	finalStates := make([]uint64, numTiles)
	for idx, eb := range encBlocks {
		blocks, finalState := eb.WriteBody(globalTable)
		bodies[idx] = blocks
		finalStates[idx] = finalState
	}

	var bodyPos uint32
	for idx := range encBlocks {
		if err := writeBlockHeader(&buf, bodyPos, finalStates[idx]); err != nil {
			return nil, fmt.Errorf("heightcif: writing block header %d: %w", idx, err)
		}
		bodyPos += 4 + uint32(len(bodies[idx]))*2 // u32 bodyLen prefix + body bytes
	}

	// 5. blockBodyStart is the offset at which bodies begin.
	blockBodyStart := uint64(buf.Len())

	// 6. Ordinary-block bodies, concatenated in header order.
	for idx := range encBlocks {
		if err := writeBlockBody(&buf, bodies[idx]); err != nil {
			return nil, fmt.Errorf("heightcif: writing block body %d: %w", idx, err)
		}
	}

	// 7. Patch blockBodyStart into the header in place.
	out := buf.Bytes()
	binary.LittleEndian.PutUint64(out[blockBodyStartOffset:blockBodyStartOffset+8], blockBodyStart)
	return out, nil
}

func buildTableOrNil(histogram map[uint16]uint32) (*rans.Table, error) {
	if len(histogram) == 0 {
		return nil, nil
	}
	return rans.NewTableFromCounts(histogram)
}
