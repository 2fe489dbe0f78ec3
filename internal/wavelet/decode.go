package wavelet

import "fmt"

// ReconstructLayer inverts DecomposeLayer: given a layer's size, its
// parent grid (the next-coarser layer's pixels) and its residual stream
// (in the same cell-major order DecomposeLayer emitted them), it
// reconstructs this layer's pixel grid.
//
// It fails fatally (returns an error the caller should treat as a
// corrupt stream) if wavelets does not have exactly size.WaveletCount()
// entries — that mismatch means the rANS stream desynchronized.
func ReconstructLayer(size Size, parentVals []uint16, wavelets []uint16) ([]uint16, error) {
	if uint32(len(wavelets)) != size.WaveletCount() {
		return nil, fmt.Errorf("wavelet: layer %dx%d: got %d wavelets, want %d", size.W, size.H, len(wavelets), size.WaveletCount())
	}
	pw, ph := size.ParentW(), size.ParentH()
	if uint32(len(parentVals)) != pw*ph {
		return nil, fmt.Errorf("wavelet: layer %dx%d: got %d parent values, want %d", size.W, size.H, len(parentVals), pw*ph)
	}

	w, h := size.W, size.H
	out := make([]uint16, w*h)
	pred := cellPredictor{parent: parentVals, pw: pw, ph: ph}
	aboveDiag := make([]uint16, pw)
	aboveValid := make([]bool, pw)

	widx := 0
	for py := uint32(0); py < ph; py++ {
		y := 2 * py
		var leftDiag uint16
		leftValid := false
		for px := uint32(0); px < pw; px++ {
			x := 2 * px
			hasRight := x+1 < w
			hasBottom := y+1 < h
			hasDiag := hasRight && hasBottom

			out[y*w+x] = parentVals[py*pw+px]

			var ownDiag uint16
			if hasDiag {
				diagPred := pred.diagonal(px, py)
				ownDiag = diagPred + wavelets[widx]
				widx++
				out[(y+1)*w+x+1] = ownDiag
			}

			if hasRight {
				trPred := pred.topRight(px, py, aboveDiag[px], aboveValid[px], ownDiag, hasDiag)
				out[y*w+x+1] = trPred + wavelets[widx]
				widx++
			}

			if hasBottom {
				blPred := pred.bottomLeft(px, py, leftDiag, leftValid, ownDiag, hasDiag)
				out[(y+1)*w+x] = blPred + wavelets[widx]
				widx++
			}

			aboveDiag[px] = ownDiag
			aboveValid[px] = hasDiag
			leftDiag = ownDiag
			leftValid = hasDiag
		}
	}
	return out, nil
}
