package heightcif

import "github.com/pspoerri/heightcif/internal/wavelet"

// widthInBlocks returns ceil(width/blockSize).
func widthInBlocks(width, blockSize uint32) uint32 {
	return (width + blockSize - 1) / blockSize
}

// heightInBlocks returns ceil(height/blockSize).
func heightInBlocks(height, blockSize uint32) uint32 {
	return (height + blockSize - 1) / blockSize
}

// tileBounds returns tile (bx,by)'s origin and size within an image of
// the given dimensions and blockSize.
func tileBounds(bx, by, width, height, blockSize uint32) (x, y uint32, size wavelet.Size) {
	x = bx * blockSize
	y = by * blockSize
	w := blockSize
	if x+w > width {
		w = width - x
	}
	h := blockSize
	if y+h > height {
		h = height - y
	}
	return x, y, wavelet.Size{W: w, H: h}
}

// extractTile copies one tile's pixels out of a row-major (width,height)
// grid.
func extractTile(pixels []uint16, width uint32, x, y uint32, size wavelet.Size) []uint16 {
	out := make([]uint16, size.W*size.H)
	for row := uint32(0); row < size.H; row++ {
		srcOff := (y+row)*width + x
		dstOff := row * size.W
		copy(out[dstOff:dstOff+size.W], pixels[srcOff:srcOff+size.W])
	}
	return out
}
