// Package rans implements the grouped, quantized rANS entropy codec used
// to compress streams of 16-bit wavelet residuals. Symbols are binned
// into groups sharing a single quantized probability; a raw-escape band
// holds symbols rare enough that storing them uncompressed beats
// modelling them.
package rans

const (
	// ProbRes is the number of bits in the probability range.
	ProbRes = 16
	// M is the probability range (1<<ProbRes): quantized PDFs across all
	// groups, including the raw band, sum to exactly M.
	M = uint32(1) << ProbRes
	// BlockBits is the width, in bits, of one renormalization block.
	BlockBits = 16
	// StateMin is the lower bound of a valid rANS state.
	StateMin = uint64(M)
	// StateMax is the upper bound of a valid rANS state.
	StateMax = (StateMin << BlockBits) - 1
)

// Group is one entry of a CDF table: a CDF start, the (possibly
// aggregated) quantized probability mass of its member symbols, and the
// slice of member symbols sharing it.
type Group struct {
	CDFStart uint32
	PDF      uint32
	Members  []uint16
}
