package heightcif

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pspoerri/heightcif/internal/rans"
)

// writeTable serializes a CDF table as: u16 groupCount, then groupCount
// groups of (u16 cdfStart, u32 memberCount, u16 memberSymbol[memberCount]).
// The trailing two groups are always the raw band and the M-1 sentinel.
//
// A nil table (the degenerate case of a tile whose pyramid has zero
// residuals, e.g. a single-pixel image) serializes as groupCount=0.
func writeTable(w io.Writer, t *rans.Table) error {
	if t == nil {
		return binary.Write(w, binary.LittleEndian, uint16(0))
	}
	recs := t.GenerateGroupRecords()
	if len(recs) > 0xFFFF {
		return fmt.Errorf("heightcif: table has %d groups, exceeds u16 groupCount", len(recs))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(recs))); err != nil {
		return err
	}
	for _, r := range recs {
		if err := binary.Write(w, binary.LittleEndian, uint16(r.CDFStart)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(r.Members))); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, r.Members); err != nil {
			return err
		}
	}
	return nil
}

// readTable deserializes a table written by writeTable.
func readTable(r io.Reader) (*rans.Table, error) {
	var groupCount uint16
	if err := binary.Read(r, binary.LittleEndian, &groupCount); err != nil {
		return nil, fmt.Errorf("reading groupCount: %w", err)
	}
	if groupCount == 0 {
		return nil, nil
	}
	recs := make([]rans.GroupRecord, groupCount)
	for i := range recs {
		var cdfStart uint16
		if err := binary.Read(r, binary.LittleEndian, &cdfStart); err != nil {
			return nil, fmt.Errorf("reading group %d cdfStart: %w", i, err)
		}
		var memberCount uint32
		if err := binary.Read(r, binary.LittleEndian, &memberCount); err != nil {
			return nil, fmt.Errorf("reading group %d memberCount: %w", i, err)
		}
		members := make([]uint16, memberCount)
		if memberCount > 0 {
			if err := binary.Read(r, binary.LittleEndian, members); err != nil {
				return nil, fmt.Errorf("reading group %d members: %w", i, err)
			}
		}
		recs[i] = rans.GroupRecord{CDFStart: uint32(cdfStart), Members: members}
	}
	table, err := rans.NewTableFromGroups(recs)
	if err != nil {
		return nil, fmt.Errorf("building table from group records: %w", err)
	}
	return table, nil
}

// writeUint16Vector writes a length-prefixed (u32 count) vector of u16
// values, the shape used for the parent-values tile's rootVals. Block
// bodies use writeBlockBody instead, whose u32 prefix counts bytes.
func writeUint16Vector(w io.Writer, v []uint16) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(v))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, v)
}

// readUint16Vector reads a vector written by writeUint16Vector.
func readUint16Vector(r io.Reader) ([]uint16, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	v := make([]uint16, n)
	if n > 0 {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// writeBlockHeader writes a block's on-disk header: u32 blockPos, u64
// finalRansState.
func writeBlockHeader(w io.Writer, blockPos uint32, finalRansState uint64) error {
	if err := binary.Write(w, binary.LittleEndian, blockPos); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, finalRansState)
}

type blockHeaderFields struct {
	BlockPos       uint32
	FinalRansState uint64
}

func readBlockHeader(r io.Reader) (blockHeaderFields, error) {
	var h blockHeaderFields
	if err := binary.Read(r, binary.LittleEndian, &h.BlockPos); err != nil {
		return h, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h.FinalRansState); err != nil {
		return h, err
	}
	return h, nil
}

// writeBlockBody writes a self-describing block body: u32 bodyLen (in
// bytes), then bodyLen/2 u16 renorm/literal blocks.
func writeBlockBody(w io.Writer, blocks []uint16) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(blocks)*2)); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, blocks)
}

// readBlockBody reads a body written by writeBlockBody.
func readBlockBody(r io.Reader) ([]uint16, error) {
	var bodyLen uint32
	if err := binary.Read(r, binary.LittleEndian, &bodyLen); err != nil {
		return nil, err
	}
	blocks := make([]uint16, bodyLen/2)
	if bodyLen > 0 {
		if err := binary.Read(r, binary.LittleEndian, blocks); err != nil {
			return nil, err
		}
	}
	return blocks, nil
}
