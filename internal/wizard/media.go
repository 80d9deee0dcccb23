package wizard

import "log/slog"

// Capture slot names. Each slot holds at most one captured image; a new
// capture for the same slot replaces the old one wholesale.
const (
	SlotDocument = "document"
	SlotAddress  = "address_proof"
	SlotFace     = "face"
)

// AttachMedia stores a captured image blob under the given slot, releasing any
// prior capture held there. The final submission step reads slots without
// consuming them, so a failed submission can be retried.
func (e *Engine) AttachMedia(slot string, blob []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, replaced := e.media[slot]; replaced {
		slog.Debug("Engine.AttachMedia: replacing prior capture", "token", e.token, "slot", slot)
	}
	e.media[slot] = blob
}

// Media returns the blob captured for the given slot, or nil.
func (e *Engine) Media(slot string) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.media[slot]
}

// MediaSlots returns the slot names that currently hold a capture.
func (e *Engine) MediaSlots() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	slots := make([]string, 0, len(e.media))
	for slot := range e.media {
		slots = append(slots, slot)
	}
	return slots
}

// ReleaseMedia drops the capture held for the given slot, if any.
func (e *Engine) ReleaseMedia(slot string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.media, slot)
}
