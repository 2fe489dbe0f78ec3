package encode

import "testing"

func TestSampleTerrariumRoundTrip(t *testing.T) {
	samples := []uint16{0, 1, 255, 256, 32768, 65535}
	for _, s := range samples {
		c := SampleToTerrarium(s)
		if got := TerrariumToSample(c); got != s {
			t.Errorf("SampleToTerrarium(%d) -> TerrariumToSample = %d, want %d", s, got, s)
		}
	}
}

func TestTerrariumEncoderFormat(t *testing.T) {
	enc := &TerrariumEncoder{}
	if enc.Format() != "terrarium" {
		t.Errorf("Format() = %q, want terrarium", enc.Format())
	}
	if enc.FileExtension() != ".png" {
		t.Errorf("FileExtension() = %q, want .png", enc.FileExtension())
	}
}
