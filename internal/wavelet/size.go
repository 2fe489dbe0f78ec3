// Package wavelet implements the lossless bilinear wavelet pyramid used to
// turn a 16-bit pixel grid into a root value plus layered residuals, and
// back. It has no knowledge of entropy coding or file formats; it only
// knows how to decompose and reconstruct pixel grids.
package wavelet

// Size describes one layer of the pyramid: its pixel dimensions.
// A layer's parent is the next-coarser layer, with dimensions rounded up
// on division by two.
type Size struct {
	W, H uint32
}

// ParentW returns the parent layer's width.
func (s Size) ParentW() uint32 {
	return (s.W + 1) / 2
}

// ParentH returns the parent layer's height.
func (s Size) ParentH() uint32 {
	return (s.H + 1) / 2
}

// Parent returns the size of the next-coarser layer.
func (s Size) Parent() Size {
	return Size{W: s.ParentW(), H: s.ParentH()}
}

// PixelCount returns the number of pixels at this layer.
func (s Size) PixelCount() uint32 {
	return s.W * s.H
}

// WaveletCount returns the number of residual values stored at this layer:
// every pixel except the ones copied into the parent grid.
func (s Size) WaveletCount() uint32 {
	return s.PixelCount() - s.Parent().PixelCount()
}

// IsRoot reports whether this size's parent is small enough (at most 2x2,
// i.e. at most 4 pixels) that no further decomposition is useful — this
// layer is the last one with residuals, and its parent grid is the
// pyramid's root values.
func (s Size) IsRoot() bool {
	p := s.Parent()
	return p.W <= 2 && p.H <= 2
}
