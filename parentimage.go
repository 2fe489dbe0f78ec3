package heightcif

import "github.com/pspoerri/heightcif/internal/wavelet"

// buildParentImage assembles the synthetic "parent-values image": every
// tile's root parent values (1-4 entries), de-swizzled into a single
// dense grid so the rANS table can exploit the strong spatial
// correlation between neighbouring tiles' roots.
//
// Each tile (bx,by) is given a fixed 2x2 slot at image coordinates
// (bx*2+px, by*2+py). Edge tiles whose root grid is narrower than 2x2
// leave part of their slot unused; those positions are filled by
// clamp-replicating the tile's nearest real root value so the synthetic
// image stays smooth (and therefore cheap to entropy-code) without
// needing a sparse representation.
func buildParentImage(tileRoots [][]uint16, tileRootSizes []wavelet.Size, widthBlocks, heightBlocks uint32) (pixels []uint16, size wavelet.Size) {
	size = wavelet.Size{W: widthBlocks * 2, H: heightBlocks * 2}
	pixels = make([]uint16, size.W*size.H)
	for by := uint32(0); by < heightBlocks; by++ {
		for bx := uint32(0); bx < widthBlocks; bx++ {
			idx := by*widthBlocks + bx
			root := tileRoots[idx]
			rs := tileRootSizes[idx]
			for py := uint32(0); py < 2; py++ {
				for px := uint32(0); px < 2; px++ {
					sx, sy := px, py
					if sx >= rs.W {
						sx = rs.W - 1
					}
					if sy >= rs.H {
						sy = rs.H - 1
					}
					v := root[sy*rs.W+sx]
					ix, iy := bx*2+px, by*2+py
					pixels[iy*size.W+ix] = v
				}
			}
		}
	}
	return pixels, size
}

// reswizzleParentImage inverts buildParentImage: given the decoded
// parent-image pixels, it extracts each tile's real (pw x ph) root
// values back out of that tile's 2x2 slot.
func reswizzleParentImage(pixels []uint16, parentSize wavelet.Size, tileRootSizes []wavelet.Size, widthBlocks, heightBlocks uint32) [][]uint16 {
	roots := make([][]uint16, widthBlocks*heightBlocks)
	for by := uint32(0); by < heightBlocks; by++ {
		for bx := uint32(0); bx < widthBlocks; bx++ {
			idx := by*widthBlocks + bx
			rs := tileRootSizes[idx]
			root := make([]uint16, rs.W*rs.H)
			for py := uint32(0); py < rs.H; py++ {
				for px := uint32(0); px < rs.W; px++ {
					ix, iy := bx*2+px, by*2+py
					root[py*rs.W+px] = pixels[iy*parentSize.W+ix]
				}
			}
			roots[idx] = root
		}
	}
	return roots
}

// tileRootSize returns the dimensions of the root parent grid of a tile
// of size leaf without building its pyramid, by walking the same layer chain
// wavelet.RootSize uses.
func tileRootSize(leaf wavelet.Size) wavelet.Size {
	return wavelet.RootSize(leaf)
}
