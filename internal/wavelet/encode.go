package wavelet

// Layer is one level of an encode-side pyramid: the residuals produced at
// this layer's resolution, plus the parent grid they were predicted
// against.
type Layer struct {
	Size       Size
	Wavelets   []uint16
	ParentVals []uint16
}

// Decompose builds the full wavelet pyramid for a pixel grid, from the
// leaf (size) up through the layer whose parent is root-sized. It returns
// the chain ordered leaf-first (index 0) and the final root values (the
// topmost layer's parent grid, 1-4 entries).
func Decompose(pixels []uint16, size Size) (layers []Layer, rootValues []uint16) {
	cur := pixels
	curSize := size
	for {
		wavelets, parentVals := DecomposeLayer(cur, curSize)
		layers = append(layers, Layer{Size: curSize, Wavelets: wavelets, ParentVals: parentVals})
		if curSize.IsRoot() {
			rootValues = parentVals
			return layers, rootValues
		}
		cur = parentVals
		curSize = curSize.Parent()
	}
}

// DecomposeLayer runs the bilinear predictor over one layer's pixel grid,
// producing its residual stream (in cell-major emission order: diagonal,
// top-right, bottom-left, skipping positions absent at odd edges) and the
// parent grid those residuals were predicted against.
func DecomposeLayer(pixels []uint16, size Size) (wavelets []uint16, parentVals []uint16) {
	w, h := size.W, size.H
	pw, ph := size.ParentW(), size.ParentH()
	parentVals = make([]uint16, pw*ph)

	for py := uint32(0); py < ph; py++ {
		for px := uint32(0); px < pw; px++ {
			parentVals[py*pw+px] = pixels[(2*py)*w+2*px]
		}
	}

	wavelets = make([]uint16, 0, size.WaveletCount())
	pred := cellPredictor{parent: parentVals, pw: pw, ph: ph}
	aboveDiag := make([]uint16, pw)
	aboveValid := make([]bool, pw)

	for py := uint32(0); py < ph; py++ {
		y := 2 * py
		var leftDiag uint16
		leftValid := false
		for px := uint32(0); px < pw; px++ {
			x := 2 * px
			hasRight := x+1 < w
			hasBottom := y+1 < h
			hasDiag := hasRight && hasBottom

			var ownDiag uint16
			if hasDiag {
				diagPred := pred.diagonal(px, py)
				src := pixels[(y+1)*w+x+1]
				wavelets = append(wavelets, src-diagPred)
				ownDiag = src
			}

			if hasRight {
				trPred := pred.topRight(px, py, aboveDiag[px], aboveValid[px], ownDiag, hasDiag)
				src := pixels[y*w+x+1]
				wavelets = append(wavelets, src-trPred)
			}

			if hasBottom {
				blPred := pred.bottomLeft(px, py, leftDiag, leftValid, ownDiag, hasDiag)
				src := pixels[(y+1)*w+x]
				wavelets = append(wavelets, src-blPred)
			}

			aboveDiag[px] = ownDiag
			aboveValid[px] = hasDiag
			leftDiag = ownDiag
			leftValid = hasDiag
		}
	}
	return wavelets, parentVals
}

// Residuals concatenates a layer chain's wavelets top layer first, bottom
// layer last — the order a decoder must recover them in. The rANS
// encoder is fed this sequence back to front, so that the decoder, which
// pops in reverse, yields residuals root-to-leaf.
func Residuals(layers []Layer) []uint16 {
	var total uint32
	for _, l := range layers {
		total += uint32(len(l.Wavelets))
	}
	out := make([]uint16, 0, total)
	for i := len(layers) - 1; i >= 0; i-- {
		out = append(out, layers[i].Wavelets...)
	}
	return out
}
