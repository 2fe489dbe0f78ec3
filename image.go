package heightcif

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pspoerri/heightcif/internal/block"
	"github.com/pspoerri/heightcif/internal/rans"
	"github.com/pspoerri/heightcif/internal/wavelet"
)

// fixedOverhead approximates the resident cost of an Image with no
// tile blocks instantiated: header fields, the two CDF tables, and the
// block-header index.
const fixedOverhead = 256

// Image is a streaming, randomly-addressable CIF reader. Headers, both
// CDF tables, and the decoded parent-values image are read eagerly by
// Open; ordinary tile bodies are decoded lazily on first access.
type Image struct {
	r io.ReaderAt

	width, height, blockSize uint32
	blockBodyStart           uint64
	widthBlocks, heightBlocks uint32

	globalTable *rans.Table
	headers     []blockHeaderFields
	tileSizes   []wavelet.Size
	tileRoots   [][]uint16

	blocks    []*block.DecodeBlock
	cacheSize int
}

// Open reads a CIF stream's header, both CDF tables, the parent-values
// image, and every ordinary-block header. It does not read any ordinary
// tile body. size is the total byte length of r, used to bound
// sequential reads of the leading metadata region.
func Open(r io.ReaderAt, size int64) (*Image, error) {
	sr := io.NewSectionReader(r, 0, size)

	hdr := make([]byte, headerSize)
	if _, err := io.ReadFull(sr, hdr); err != nil {
		return nil, &OpenError{Op: "reading header", Err: err}
	}
	magic := binary.LittleEndian.Uint16(hdr[0:2])
	version := binary.LittleEndian.Uint16(hdr[2:4])
	if magic != Magic {
		return nil, &FormatError{Reason: fmt.Sprintf("bad magic 0x%04X, want 0x%04X", magic, Magic)}
	}
	if version != Version {
		return nil, &FormatError{Reason: fmt.Sprintf("unsupported version 0x%04X, want 0x%04X", version, Version)}
	}
	width := binary.LittleEndian.Uint32(hdr[4:8])
	height := binary.LittleEndian.Uint32(hdr[8:12])
	blockSize := binary.LittleEndian.Uint32(hdr[12:16])
	blockBodyStart := binary.LittleEndian.Uint64(hdr[16:24])

	globalTable, err := readTable(sr)
	if err != nil {
		return nil, &OpenError{Op: "reading global table", Err: err}
	}

	rootVals, err := readUint16Vector(sr)
	if err != nil {
		return nil, &OpenError{Op: "reading parent-image root values", Err: err}
	}
	parentTable, err := readTable(sr)
	if err != nil {
		return nil, &OpenError{Op: "reading parent-image table", Err: err}
	}
	parentHdr, err := readBlockHeader(sr)
	if err != nil {
		return nil, &OpenError{Op: "reading parent-image block header", Err: err}
	}
	parentBody, err := readBlockBody(sr)
	if err != nil {
		return nil, &OpenError{Op: "reading parent-image body", Err: err}
	}

	wb := widthInBlocks(width, blockSize)
	hb := heightInBlocks(height, blockSize)
	parentSize := wavelet.Size{W: wb * 2, H: hb * 2}

	var parentPixels []uint16
	if parentHdr.FinalRansState == 0 {
		return nil, &OpenError{Op: "reading parent-image body", Err: fmt.Errorf("corrupt parent-image block: finalRansState is zero")}
	}
	pdb := block.NewDecodeBlock(parentSize, rootVals, parentBody, parentHdr.FinalRansState, parentTable)
	parentPixels, err = pdb.BottomLevelPixels()
	if err != nil {
		return nil, &OpenError{Op: "decoding parent-image", Err: err}
	}

	numTiles := wb * hb
	tileSizes := make([]wavelet.Size, numTiles)
	for by := uint32(0); by < hb; by++ {
		for bx := uint32(0); bx < wb; bx++ {
			_, _, sz := tileBounds(bx, by, width, height, blockSize)
			tileSizes[by*wb+bx] = sz
		}
	}
	rootSizes := make([]wavelet.Size, numTiles)
	for i, sz := range tileSizes {
		rootSizes[i] = wavelet.RootSize(sz)
	}
	tileRoots := reswizzleParentImage(parentPixels, parentSize, rootSizes, wb, hb)

	headers := make([]blockHeaderFields, numTiles)
	for i := range headers {
		h, err := readBlockHeader(sr)
		if err != nil {
			return nil, &OpenError{Op: fmt.Sprintf("reading block header %d", i), Err: err}
		}
		headers[i] = h
	}

	return &Image{
		r:              r,
		width:          width,
		height:         height,
		blockSize:      blockSize,
		blockBodyStart: blockBodyStart,
		widthBlocks:    wb,
		heightBlocks:   hb,
		globalTable:    globalTable,
		headers:        headers,
		tileSizes:      tileSizes,
		tileRoots:      tileRoots,
		blocks:         make([]*block.DecodeBlock, numTiles),
	}, nil
}

// Width returns the image's pixel width.
func (img *Image) Width() uint32 { return img.width }

// Height returns the image's pixel height.
func (img *Image) Height() uint32 { return img.height }

// BlockSize returns the tile size the image was encoded with.
func (img *Image) BlockSize() uint32 { return img.blockSize }

// WidthInBlocks returns the number of tile columns.
func (img *Image) WidthInBlocks() uint32 { return img.widthBlocks }

// HeightInBlocks returns the number of tile rows.
func (img *Image) HeightInBlocks() uint32 { return img.heightBlocks }

// TopLOD returns the level reported for a full-size (blockSize x
// blockSize) tile that has not been instantiated. Edge tiles smaller
// than blockSize have a shallower pyramid; GetBlockLevels reports each
// of those at its own, possibly lower, top level.
func (img *Image) TopLOD() int {
	return len(wavelet.LayerSizes(wavelet.Size{W: img.blockSize, H: img.blockSize}))
}

// MemoryUsage returns the image's current estimated resident size:
// fixed overhead plus every instantiated block's own current footprint,
// which grows as the block decodes further layers.
func (img *Image) MemoryUsage() int {
	n := fixedOverhead
	for _, b := range img.blocks {
		if b != nil {
			n += b.MemoryFootprint()
		}
	}
	return n
}

// ClearBlockCache drops every instantiated tile block, preserving
// headers and the parent-values image. Subsequent reads into a cleared
// tile re-seek and re-instantiate it.
func (img *Image) ClearBlockCache() {
	for i := range img.blocks {
		img.blocks[i] = nil
	}
	img.cacheSize = 0
}

// GetBlockLevels returns each tile's currently cached level (0 = leaf,
// increasing toward the root), or that tile's TopLOD if it has not been
// instantiated.
func (img *Image) GetBlockLevels() []int {
	levels := make([]int, len(img.blocks))
	for i, b := range img.blocks {
		if b == nil {
			levels[i] = len(wavelet.LayerSizes(img.tileSizes[i]))
			continue
		}
		levels[i] = b.CurrentLevel()
	}
	return levels
}

// GetPixel reads one pixel, out-of-range coordinates and corrupt tiles
// both returning 0 (out-of-range silently; a corrupt tile is otherwise
// reported to the caller via error — use GetPixelErr to observe it).
func (img *Image) GetPixel(x, y uint32) uint16 {
	v, _ := img.GetPixelErr(x, y)
	return v
}

// GetPixelErr is GetPixel with the error a corrupt tile produced, if
// any. Out-of-range coordinates return (0, nil).
func (img *Image) GetPixelErr(x, y uint32) (uint16, error) {
	if x >= img.width || y >= img.height {
		return 0, nil
	}
	bx, by := x/img.blockSize, y/img.blockSize
	sx, sy := x%img.blockSize, y%img.blockSize
	idx := by*img.widthBlocks + bx

	half := img.blockSize / 2
	if img.blocks[idx] == nil && sx%half == 0 && sy%half == 0 {
		root := img.tileRoots[idx]
		rs := wavelet.RootSize(img.tileSizes[idx])
		px, py := sx/half, sy/half
		if px < rs.W && py < rs.H {
			return root[py*rs.W+px], nil
		}
	}

	db, err := img.instantiate(int(idx))
	if err != nil {
		return 0, &CorruptBlockError{TileX: int(bx), TileY: int(by), Err: err}
	}
	v, err := db.GetPixel(sx, sy)
	if err != nil {
		return 0, &CorruptBlockError{TileX: int(bx), TileY: int(by), Err: err}
	}
	return v, nil
}

func (img *Image) instantiate(idx int) (*block.DecodeBlock, error) {
	if db := img.blocks[idx]; db != nil {
		return db, nil
	}
	h := img.headers[idx]
	if h.FinalRansState == 0 {
		return nil, fmt.Errorf("corrupt block: finalRansState is zero")
	}
	bodyReader := io.NewSectionReader(img.r, int64(img.blockBodyStart)+int64(h.BlockPos), 1<<32)
	blocks, err := readBlockBody(bodyReader)
	if err != nil {
		return nil, fmt.Errorf("reading block body: %w", err)
	}
	db := block.NewDecodeBlock(img.tileSizes[idx], img.tileRoots[idx], blocks, h.FinalRansState, img.globalTable)
	img.blocks[idx] = db
	img.cacheSize += db.MemoryFootprint()
	return db, nil
}

// GetBottomLevelPixels fully decodes every tile and returns the image's
// leaf-resolution pixel grid, row-major.
func (img *Image) GetBottomLevelPixels() ([]uint16, error) {
	out := make([]uint16, uint64(img.width)*uint64(img.height))
	for by := uint32(0); by < img.heightBlocks; by++ {
		for bx := uint32(0); bx < img.widthBlocks; bx++ {
			idx := int(by*img.widthBlocks + bx)
			db, err := img.instantiate(idx)
			if err != nil {
				return nil, &CorruptBlockError{TileX: int(bx), TileY: int(by), Err: err}
			}
			tile, err := db.BottomLevelPixels()
			if err != nil {
				return nil, &CorruptBlockError{TileX: int(bx), TileY: int(by), Err: err}
			}
			size := img.tileSizes[idx]
			ox, oy := bx*img.blockSize, by*img.blockSize
			for row := uint32(0); row < size.H; row++ {
				dstOff := uint64(oy+row)*uint64(img.width) + uint64(ox)
				srcOff := row * size.W
				copy(out[dstOff:dstOff+uint64(size.W)], tile[srcOff:srcOff+size.W])
			}
		}
	}
	return out, nil
}
