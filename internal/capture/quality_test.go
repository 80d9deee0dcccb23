package capture

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func uniformImage(gray uint8, w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{gray, gray, gray, 255})
		}
	}
	return img
}

// stripedImage alternates black and white columns to produce a high edge ratio.
func stripedImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if x%2 == 0 {
				v = 255
			}
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestQualityGateMatrix(t *testing.T) {
	cases := []struct {
		name string
		m    Metrics
		typ  CaptureType
		want bool
	}{
		{"black frame rejected", Metrics{Brightness: 0, FillRatio: 0.9}, TypeDocument, false},
		{"mid brightness good fill accepted", Metrics{Brightness: 128, FillRatio: 0.5}, TypeDocument, true},
		{"mid brightness poor fill rejected", Metrics{Brightness: 128, FillRatio: 0.1}, TypeDocument, false},
		{"face ignores fill ratio", Metrics{Brightness: 128, FillRatio: 0.0}, TypeFace, true},
		{"face still needs brightness", Metrics{Brightness: 10, FillRatio: 0.9}, TypeFace, false},
		{"overexposed rejected", Metrics{Brightness: 240, FillRatio: 0.5}, TypeDocument, false},
		{"lower brightness bound inclusive", Metrics{Brightness: 40, FillRatio: 0.3}, TypeDocument, true},
		{"upper brightness bound inclusive", Metrics{Brightness: 220, FillRatio: 0.3}, TypeDocument, true},
	}
	for _, tc := range cases {
		if got := IsQualityAcceptable(tc.m, tc.typ); got != tc.want {
			t.Errorf("%s: IsQualityAcceptable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAnalyzeUniformFrame(t *testing.T) {
	blob := encodeJPEG(t, uniformImage(128, 64, 48))
	m, err := AnalyzeFrameQuality(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Brightness < 120 || m.Brightness > 136 {
		t.Errorf("uniform gray brightness out of range: %f", m.Brightness)
	}
	// A flat frame has essentially no edges and therefore no fill.
	if m.FillRatio >= FillRatioMin {
		t.Errorf("flat frame should fail the fill gate, got %f", m.FillRatio)
	}
	if m.Width != 64 || m.Height != 48 {
		t.Errorf("dimensions wrong: %dx%d", m.Width, m.Height)
	}
}

func TestAnalyzeStripedFrameHasEdges(t *testing.T) {
	blob := encodeJPEG(t, stripedImage(64, 48))
	m, err := AnalyzeFrameQuality(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.EdgeRatio < 0.1 {
		t.Errorf("striped frame edge ratio too low: %f", m.EdgeRatio)
	}
	if m.FillRatio < FillRatioMin {
		t.Errorf("striped frame should pass the fill gate, got %f", m.FillRatio)
	}
}

func TestAnalyzeRejectsGarbage(t *testing.T) {
	if _, err := AnalyzeFrameQuality([]byte("not an image")); err == nil {
		t.Error("expected decode error for garbage input")
	}
}
