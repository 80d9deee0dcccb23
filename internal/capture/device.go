package capture

import (
	"context"
	"image"
)

// FacingMode selects which camera a device should open.
type FacingMode string

const (
	// FacingEnvironment is the rear camera, preferred for document capture.
	FacingEnvironment FacingMode = "environment"
	// FacingUser is the front camera, preferred for face capture.
	FacingUser FacingMode = "user"
)

// Toggle returns the opposite facing mode.
func (m FacingMode) Toggle() FacingMode {
	if m == FacingEnvironment {
		return FacingUser
	}
	return FacingEnvironment
}

// Default capture constraints requested from any device.
const (
	IdealWidth  = 1920
	IdealHeight = 1080
)

// Constraints describes the stream the controller prefers. A device may open
// a stream with different actual dimensions; ideal values are preferences,
// not requirements.
type Constraints struct {
	FacingMode  FacingMode
	IdealWidth  int
	IdealHeight int
}

// FrameSource is a live stream of frames from an opened camera.
type FrameSource interface {
	// NextFrame returns the current frame. It blocks until a frame is
	// available or the context is cancelled.
	NextFrame(ctx context.Context) (image.Image, error)

	// Close stops the underlying stream and releases the device. Close is
	// idempotent.
	Close() error
}

// Device opens frame sources. Implementations map platform failures to
// classified *Error values.
type Device interface {
	Open(ctx context.Context, c Constraints) (FrameSource, error)
}
