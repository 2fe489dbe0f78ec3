package heightcif

import "fmt"

// OpenError wraps a failure to open a CIF stream: a missing file or an
// I/O read failure while reading the header, global table, parent
// image, or block-header index.
type OpenError struct {
	Op  string
	Err error
}

func (e *OpenError) Error() string { return fmt.Sprintf("heightcif: open: %s: %v", e.Op, e.Err) }
func (e *OpenError) Unwrap() error { return e.Err }

// FormatError reports a bad magic number or an unsupported version.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return fmt.Sprintf("heightcif: bad format: %s", e.Reason) }

// CorruptBlockError reports a per-tile decode failure: a zero
// finalRansState, a wavelet-count mismatch, or an rANS invariant
// violation mid-decode. It is fatal to the operation that triggered it
// but does not invalidate the image's other tiles.
type CorruptBlockError struct {
	TileX, TileY int
	Err          error
}

func (e *CorruptBlockError) Error() string {
	return fmt.Sprintf("heightcif: corrupt block at tile (%d,%d): %v", e.TileX, e.TileY, e.Err)
}
func (e *CorruptBlockError) Unwrap() error { return e.Err }
