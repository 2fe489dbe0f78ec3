package encode

import (
	"bytes"
	"fmt"
	"image"

	"github.com/gen2brain/webp"
)

// WebPEncoder encodes tiles as WebP using gen2brain/webp, a pure-Go
// codec backed by libwebp compiled to WASM (ebitengine/purego +
// tetratelabs/wazero), so cross-compiling cifpreview needs no cgo.
type WebPEncoder struct {
	Quality int
}

func newWebPEncoder(quality int) (Encoder, error) {
	if quality <= 0 {
		quality = 85
	}
	return &WebPEncoder{Quality: quality}, nil
}

func (e *WebPEncoder) Encode(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("webp: empty image")
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, webp.Options{Quality: float32(e.Quality)}); err != nil {
		return nil, fmt.Errorf("webp: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *WebPEncoder) Format() string        { return "webp" }
func (e *WebPEncoder) FileExtension() string { return ".webp" }
