package encode

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// TerrariumEncoder encodes tiles as Terrarium-format PNG.
// The input image should already have Terrarium-encoded RGB values.
type TerrariumEncoder struct{}

func (e *TerrariumEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := &png.Encoder{CompressionLevel: png.BestSpeed}
	err := enc.Encode(&buf, img)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *TerrariumEncoder) Format() string       { return "terrarium" }
func (e *TerrariumEncoder) FileExtension() string { return ".png" }

// SampleToTerrarium packs a raw 16-bit heightcif sample into Terrarium
// RGB so a height tile can ride the same web-map preview pipeline as
// float elevation data. Unlike geographic elevation (which needs the
// +32768 offset to cover negative metres), a heightcif sample is
// already an unsigned 16-bit quantity, so it maps directly onto the
// high/low byte pair; B is always 0 since the format's 16 bits of
// precision fit in R/G alone.
func SampleToTerrarium(sample uint16) color.RGBA {
	return color.RGBA{R: uint8(sample >> 8), G: uint8(sample), B: 0, A: 255}
}

// TerrariumToSample inverts SampleToTerrarium, recovering the original
// 16-bit sample from its R/G bytes.
func TerrariumToSample(c color.RGBA) uint16 {
	return uint16(c.R)<<8 | uint16(c.G)
}
