package cog

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ReadUint16Grid assembles a full single-band 16-bit pixel grid from
// one IFD level, the producer side of heightcif's (width, height,
// pixels) input. It walks every tile of the level through readTileRaw
// and decodes each sample to an unsigned 16-bit value (see decodeSample
// for how signed, float and 8-bit samples are mapped).
func (r *Reader) ReadUint16Grid(level int) (pixels []uint16, width, height int, err error) {
	if level < 0 || level >= len(r.ifds) {
		return nil, 0, 0, fmt.Errorf("invalid IFD level %d (have %d)", level, len(r.ifds))
	}
	ifd := &r.ifds[level]
	width = int(ifd.Width)
	height = int(ifd.Height)
	pixels = make([]uint16, width*height)

	tilesAcross := ifd.TilesAcross()
	tilesDown := ifd.TilesDown()

	for row := 0; row < tilesDown; row++ {
		for col := 0; col < tilesAcross; col++ {
			data, tileIFD, err := r.readTileRaw(level, col, row)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("reading tile (%d,%d): %w", col, row, err)
			}
			tw, th := int(tileIFD.TileWidth), int(tileIFD.TileHeight)
			if data == nil {
				continue // empty tile: leave as zero
			}
			tilePixels, err := decodeUint16Tile(tileIFD, data, tw, th)
			if err != nil {
				return nil, 0, 0, fmt.Errorf("decoding tile (%d,%d): %w", col, row, err)
			}

			ox, oy := col*tw, row*th
			for ty := 0; ty < th; ty++ {
				py := oy + ty
				if py >= height {
					break
				}
				for tx := 0; tx < tw; tx++ {
					px := ox + tx
					if px >= width {
						break
					}
					pixels[py*width+px] = tilePixels[ty*tw+tx]
				}
			}
		}
	}
	return pixels, width, height, nil
}

// decodeUint16Tile decodes one tile's raw (post-predictor) bytes into
// uint16 samples, honouring the IFD's declared bit depth and sample
// format (unsigned int, signed int, or IEEE float).
func decodeUint16Tile(ifd *IFD, data []byte, w, h int) ([]uint16, error) {
	bps := 16
	if len(ifd.BitsPerSample) > 0 {
		bps = int(ifd.BitsPerSample[0])
	}
	spp := int(ifd.SamplesPerPixel)
	if spp == 0 {
		spp = 1
	}
	sampleFormat := uint16(1)
	if len(ifd.SampleFormat) > 0 {
		sampleFormat = ifd.SampleFormat[0]
	}

	out := make([]uint16, w*h)
	bytesPerSample := bps / 8
	stride := bytesPerSample * spp

	for i := 0; i < w*h; i++ {
		off := i * stride
		if off+bytesPerSample > len(data) {
			break
		}
		out[i] = decodeSample(data[off:off+bytesPerSample], bps, sampleFormat)
	}
	return out, nil
}

func decodeSample(b []byte, bps int, sampleFormat uint16) uint16 {
	switch {
	case sampleFormat == 3 && bps == 32: // IEEE float32, rounded and clamped
		bits := binary.LittleEndian.Uint32(b)
		v := math.Float32frombits(bits)
		return clampToUint16(float64(v))
	case sampleFormat == 2 && bps == 16: // signed 16-bit, offset into unsigned range
		v := int16(binary.LittleEndian.Uint16(b))
		return uint16(int32(v) + 1<<15)
	case bps == 8:
		return uint16(b[0]) << 8
	default: // unsigned 16-bit, the common heightmap case
		return binary.LittleEndian.Uint16(b)
	}
}

func clampToUint16(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v + 0.5)
}
