package capture

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Auto-capture cadence.
const (
	// DocumentCheckInterval is how often document frame quality is re-checked.
	DocumentCheckInterval = time.Second
	// FaceFrameInterval is the fixed spacing of the face capture sequence.
	FaceFrameInterval = 800 * time.Millisecond
	// FaceFrameCount is how many frames the face sequence records.
	FaceFrameCount = 3
	// FaceFrameMinimum is the fewest frames needed to return a result.
	FaceFrameMinimum = 2
)

// AutoCaptureDocument polls frame quality once per interval until a frame
// passes the document gate or the context is cancelled. Frames that fail
// analysis are skipped, not fatal.
func AutoCaptureDocument(ctx context.Context, c *Controller) ([]byte, Metrics, error) {
	ticker := time.NewTicker(DocumentCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, Metrics{}, ctx.Err()
		case <-ticker.C:
			blob, err := c.CaptureFrame(ctx)
			if err != nil {
				slog.Debug("AutoCaptureDocument: frame capture failed, retrying", "error", err)
				continue
			}
			metrics, err := AnalyzeFrameQuality(blob)
			if err != nil {
				slog.Debug("AutoCaptureDocument: frame analysis failed, retrying", "error", err)
				continue
			}
			if IsQualityAcceptable(metrics, TypeDocument) {
				slog.Info("AutoCaptureDocument: quality gate passed",
					"brightness", metrics.Brightness, "fill_ratio", metrics.FillRatio)
				return blob, metrics, nil
			}
			slog.Debug("AutoCaptureDocument: quality gate not met",
				"brightness", metrics.Brightness, "fill_ratio", metrics.FillRatio)
		}
	}
}

// CaptureFaceSequence records up to three frames at a fixed 800ms cadence and
// returns the middle frame unconditionally, with no quality gate: the fixed
// spacing gives the recipient time to position, and the middle frame is the
// steadiest. At least two frames must have been obtained before cancellation.
func CaptureFaceSequence(ctx context.Context, c *Controller) ([]byte, Metrics, error) {
	var frames [][]byte
	for i := 0; i < FaceFrameCount; i++ {
		select {
		case <-ctx.Done():
			return pickFaceFrame(frames, ctx.Err())
		case <-time.After(FaceFrameInterval):
		}

		blob, err := c.CaptureFrame(ctx)
		if err != nil {
			return pickFaceFrame(frames, err)
		}
		frames = append(frames, blob)
	}
	return pickFaceFrame(frames, nil)
}

func pickFaceFrame(frames [][]byte, cause error) ([]byte, Metrics, error) {
	if len(frames) < FaceFrameMinimum {
		if cause == nil {
			cause = fmt.Errorf("insufficient frames")
		}
		return nil, Metrics{}, fmt.Errorf("face sequence incomplete (%d frames): %w", len(frames), cause)
	}
	middle := frames[len(frames)/2]
	metrics, err := AnalyzeFrameQuality(middle)
	if err != nil {
		// The face flow has no quality gate; analysis is informational only.
		slog.Debug("CaptureFaceSequence: analysis of selected frame failed", "error", err)
		metrics = Metrics{}
	}
	slog.Info("CaptureFaceSequence: selected middle frame", "frames", len(frames))
	return middle, metrics, nil
}
