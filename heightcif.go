// Package heightcif implements the CIF container: a tiled, lossless
// codec for 16-bit single-channel heightmaps supporting both full
// decode and O(1) random-access reads at multiple levels of detail.
//
// Encoding builds a wavelet pyramid per tile (internal/wavelet),
// entropy-codes every tile's residuals against a shared rANS table
// (internal/rans), and packages tiles plus a "parent-values image" of
// every tile's root values into one seekable file (internal/block).
// Decoding opens that file lazily: headers and the parent-values image
// are read eagerly, but ordinary tile bodies are only decoded when a
// pixel inside them is requested.
package heightcif

const (
	// Magic identifies a CIF file.
	Magic = 0xFEDF
	// Version is the on-disk format version this package reads/writes.
	Version = 0x0003
	// DefaultBlockSize is used when a caller does not specify one.
	DefaultBlockSize = 32

	headerSize = 2 + 2 + 4 + 4 + 4 + 8 // magic, version, width, height, blockSize, blockBodyStart
)
