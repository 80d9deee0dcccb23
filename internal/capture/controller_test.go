package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"
)

// stubSource serves a fixed sequence of frames, then repeats the last one.
type stubSource struct {
	frames []image.Image
	next   atomic.Int32
	closed atomic.Int32
}

func (s *stubSource) NextFrame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i := int(s.next.Add(1)) - 1
	if i >= len(s.frames) {
		i = len(s.frames) - 1
	}
	return s.frames[i], nil
}

func (s *stubSource) Close() error {
	s.closed.Add(1)
	return nil
}

// stubDevice opens stub sources, optionally failing with a classified error.
type stubDevice struct {
	source  *stubSource
	openErr error
	opened  int
}

func (d *stubDevice) Open(_ context.Context, _ Constraints) (FrameSource, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opened++
	return d.source, nil
}

func flatFrame(gray uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{gray, gray, gray, 255})
		}
	}
	return img
}

func TestControllerInitializeAndCapture(t *testing.T) {
	ctx := context.Background()
	dev := &stubDevice{source: &stubSource{frames: []image.Image{flatFrame(128)}}}
	c := NewController(dev)

	if err := c.Initialize(ctx, FacingEnvironment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Active() {
		t.Fatal("controller not active after initialize")
	}

	blob, err := c.CaptureFrame(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, err := AnalyzeFrameQuality(blob)
	if err != nil {
		t.Fatalf("captured blob is not a decodable JPEG: %v", err)
	}
	if m.Brightness < 120 || m.Brightness > 136 {
		t.Errorf("unexpected brightness: %f", m.Brightness)
	}
}

func TestSwitchCameraTogglesAndReopens(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{frames: []image.Image{flatFrame(128)}}
	dev := &stubDevice{source: src}
	c := NewController(dev)

	if err := c.Initialize(ctx, FacingEnvironment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.SwitchCamera(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.FacingMode() != FacingUser {
		t.Errorf("facing mode not toggled: %s", c.FacingMode())
	}
	if dev.opened != 2 {
		t.Errorf("expected 2 opens, got %d", dev.opened)
	}
	// The prior stream must have been stopped before or right after reopen.
	if src.closed.Load() == 0 {
		t.Error("previous stream never closed on camera switch")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{frames: []image.Image{flatFrame(128)}}
	c := NewController(&stubDevice{source: src})

	// Safe with no stream at all.
	c.Stop()

	if err := c.Initialize(ctx, FacingEnvironment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Stop()
	c.Stop()
	if got := src.closed.Load(); got != 1 {
		t.Errorf("expected exactly 1 close, got %d", got)
	}
	if c.Active() {
		t.Error("controller still active after Stop")
	}

	if _, err := c.CaptureFrame(ctx); err == nil {
		t.Error("capture after Stop must fail")
	}
}

func TestClassifiedOpenError(t *testing.T) {
	dev := &stubDevice{openErr: NewError(ErrDeviceBusy, errors.New("EBUSY"))}
	c := NewController(dev)

	err := c.Initialize(context.Background(), FacingEnvironment)
	var camErr *Error
	if !errors.As(err, &camErr) {
		t.Fatalf("expected classified *Error, got %v", err)
	}
	if camErr.Class != ErrDeviceBusy {
		t.Errorf("wrong class: %s", camErr.Class)
	}
	if camErr.Message() == "" {
		t.Error("classified error has no user-facing message")
	}
}

func TestErrorMessagesPerClass(t *testing.T) {
	classes := []ErrorClass{
		ErrPermissionDenied, ErrNoDevice, ErrDeviceBusy,
		ErrOverconstrained, ErrInsecureContext, ErrUnknown,
	}
	seen := map[string]bool{}
	for _, class := range classes {
		msg := NewError(class, errors.New("cause")).Message()
		if msg == "" {
			t.Errorf("class %s has empty message", class)
		}
		if seen[msg] && class != ErrUnknown {
			t.Errorf("class %s shares a message with another class", class)
		}
		seen[msg] = true
	}
}

func TestCaptureFaceSequenceReturnsMiddleFrame(t *testing.T) {
	ctx := context.Background()
	// Three distinguishable brightness levels; the middle one must win.
	src := &stubSource{frames: []image.Image{flatFrame(60), flatFrame(128), flatFrame(200)}}
	c := NewController(&stubDevice{source: src})
	if err := c.Initialize(ctx, FacingUser); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blob, m, err := CaptureFaceSequence(ctx, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blob == nil {
		t.Fatal("no frame returned")
	}
	// No quality gate applies; even a frame outside the gate would be kept.
	if m.Brightness < 118 || m.Brightness > 138 {
		t.Errorf("expected the middle (128) frame, got brightness %f", m.Brightness)
	}
}

func TestCaptureFaceSequenceCancelledEarly(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), FaceFrameInterval/2)
	defer cancel()
	src := &stubSource{frames: []image.Image{flatFrame(128)}}
	c := NewController(&stubDevice{source: src})
	if err := c.Initialize(context.Background(), FacingUser); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Cancelled before two frames were obtained: no result.
	if _, _, err := CaptureFaceSequence(ctx, c); err == nil {
		t.Error("expected error when fewer than two frames were captured")
	}
}

func TestAutoCaptureDocumentWaitsForQuality(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// First frame is too dark; the follow-up striped frame passes the gate.
	striped := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			v := uint8(0)
			if x%2 == 0 {
				v = 255
			}
			striped.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	src := &stubSource{frames: []image.Image{flatFrame(5), striped}}
	c := NewController(&stubDevice{source: src})
	if err := c.Initialize(ctx, FacingEnvironment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blob, m, err := AutoCaptureDocument(ctx, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blob == nil || !IsQualityAcceptable(m, TypeDocument) {
		t.Errorf("auto-capture returned a frame failing its own gate: %+v", m)
	}
}

func TestAutoCaptureDocumentCancellable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	// Permanently dark frames never pass; cancellation must end the loop.
	src := &stubSource{frames: []image.Image{flatFrame(5)}}
	c := NewController(&stubDevice{source: src})
	if err := c.Initialize(context.Background(), FacingEnvironment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := AutoCaptureDocument(ctx, c); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
