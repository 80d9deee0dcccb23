package capture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// CaptureType distinguishes the two capture flows with different quality gates.
type CaptureType string

const (
	// TypeDocument captures the identity document; gated on brightness and fill.
	TypeDocument CaptureType = "document"
	// TypeFace captures the recipient's face; gated on brightness only.
	TypeFace CaptureType = "face"
)

// Quality gate thresholds.
const (
	// BrightnessMin and BrightnessMax bound acceptable average brightness (0-255).
	BrightnessMin = 40.0
	BrightnessMax = 220.0
	// FillRatioMin is the minimum estimated document fill for document capture.
	FillRatioMin = 0.3
	// EdgeDelta is the adjacent-pixel brightness difference counted as an edge.
	EdgeDelta = 30.0
)

// Metrics are the perceptual quality measurements for one frame.
type Metrics struct {
	// Brightness is the average perceived brightness over all pixels (0-255).
	Brightness float64 `json:"brightness"`
	// EdgeRatio is the fraction of pixels with a high-contrast transition
	// from their predecessor, a proxy for document-edge density.
	EdgeRatio float64 `json:"edge_ratio"`
	// FillRatio estimates how much of the frame a document fills,
	// derived as min(EdgeRatio*10, 1).
	FillRatio float64 `json:"fill_ratio"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

// AnalyzeFrameQuality decodes an image blob and computes its quality metrics.
// Perceived brightness per pixel is 0.299R + 0.587G + 0.114B.
func AnalyzeFrameQuality(blob []byte) (Metrics, error) {
	img, _, err := image.Decode(bytes.NewReader(blob))
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to decode frame: %w", err)
	}
	return analyzeImage(img), nil
}

func analyzeImage(img image.Image) Metrics {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	total := width * height
	if total == 0 {
		return Metrics{Width: width, Height: height}
	}

	var sum float64
	edges := 0
	prev := -1.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA returns 16-bit channels; scale to 0-255.
			brightness := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			sum += brightness
			if prev >= 0 {
				delta := brightness - prev
				if delta < 0 {
					delta = -delta
				}
				if delta > EdgeDelta {
					edges++
				}
			}
			prev = brightness
		}
	}

	edgeRatio := float64(edges) / float64(total)
	fill := edgeRatio * 10
	if fill > 1 {
		fill = 1
	}
	return Metrics{
		Brightness: sum / float64(total),
		EdgeRatio:  edgeRatio,
		FillRatio:  fill,
		Width:      width,
		Height:     height,
	}
}

// IsQualityAcceptable applies the per-type quality gate. Document capture
// requires acceptable brightness and a visible document (fill ratio); face
// capture is gated on brightness alone.
func IsQualityAcceptable(m Metrics, t CaptureType) bool {
	brightnessOK := m.Brightness >= BrightnessMin && m.Brightness <= BrightnessMax
	if t == TypeDocument {
		return brightnessOK && m.FillRatio >= FillRatioMin
	}
	return brightnessOK
}
