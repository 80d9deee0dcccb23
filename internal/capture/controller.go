package capture

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"log/slog"
	"sync"
)

// JPEGQuality is the encode quality for captured stills.
const JPEGQuality = 92

// Controller manages at most one live frame source at a time, mirroring the
// constraint that a capture session holds a single active media stream.
type Controller struct {
	device Device

	mu     sync.Mutex
	source FrameSource
	facing FacingMode
}

// NewController creates a controller over the given device.
func NewController(device Device) *Controller {
	return &Controller{device: device, facing: FacingEnvironment}
}

// Initialize opens a stream with the preferred facing mode, stopping any
// previously open stream first.
func (c *Controller) Initialize(ctx context.Context, facing FacingMode) error {
	c.Stop()

	source, err := c.device.Open(ctx, Constraints{
		FacingMode:  facing,
		IdealWidth:  IdealWidth,
		IdealHeight: IdealHeight,
	})
	if err != nil {
		slog.Error("Controller.Initialize: camera open failed", "error", err, "facing", facing)
		return err
	}

	c.mu.Lock()
	c.source = source
	c.facing = facing
	c.mu.Unlock()
	slog.Debug("Controller.Initialize: camera ready", "facing", facing)
	return nil
}

// SwitchCamera toggles the facing mode and re-initializes the stream.
func (c *Controller) SwitchCamera(ctx context.Context) error {
	c.mu.Lock()
	next := c.facing.Toggle()
	c.mu.Unlock()
	return c.Initialize(ctx, next)
}

// FacingMode returns the facing mode of the current or most recent stream.
func (c *Controller) FacingMode() FacingMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.facing
}

// Active reports whether a stream is currently open.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source != nil
}

// CaptureFrame grabs the current frame and encodes it as a JPEG still.
func (c *Controller) CaptureFrame(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	source := c.source
	c.mu.Unlock()
	if source == nil {
		return nil, fmt.Errorf("camera not initialized")
	}

	frame, err := source.NextFrame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture frame: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// Stop closes the active stream, if any. Idempotent and safe to call when no
// stream is open.
func (c *Controller) Stop() {
	c.mu.Lock()
	source := c.source
	c.source = nil
	c.mu.Unlock()

	if source == nil {
		return
	}
	if err := source.Close(); err != nil {
		slog.Warn("Controller.Stop: failed to close frame source", "error", err)
	}
	slog.Debug("Controller.Stop: camera stopped")
}
