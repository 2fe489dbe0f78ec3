package wavelet

// LayerSizes returns the chain of layer sizes from the leaf up through
// (and including) the layer whose parent is root-sized, without touching
// any pixel data. Useful for planning a lazy decode: the wavelet count of
// each size tells the decoder how many rANS symbols to pull per layer.
func LayerSizes(leaf Size) []Size {
	var sizes []Size
	cur := leaf
	for {
		sizes = append(sizes, cur)
		if cur.IsRoot() {
			return sizes
		}
		cur = cur.Parent()
	}
}

// RootSize returns the size of the pyramid's root grid (1-4 pixels): the
// parent of the last size in the chain returned by LayerSizes.
func RootSize(leaf Size) Size {
	sizes := LayerSizes(leaf)
	return sizes[len(sizes)-1].Parent()
}
