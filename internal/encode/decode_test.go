package encode

import "testing"

func TestDecodeImageRoundTripPNG(t *testing.T) {
	img := testImage(32)
	enc := &PNGEncoder{}
	data, err := enc.Encode(img)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodeImage(data, "png")
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("decoded bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}

func TestDecodeImageRoundTripWebP(t *testing.T) {
	img := testImage(32)
	enc, err := newWebPEncoder(90)
	if err != nil {
		t.Fatalf("newWebPEncoder: %v", err)
	}
	data, err := enc.Encode(img)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodeImage(data, "webp")
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if decoded.Bounds().Dx() != img.Bounds().Dx() || decoded.Bounds().Dy() != img.Bounds().Dy() {
		t.Fatalf("decoded size = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}

func TestDecodeImageUnsupportedFormat(t *testing.T) {
	if _, err := DecodeImage(nil, "bmp"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
