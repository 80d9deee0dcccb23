package wizard

import "github.com/meridian-ops/ioops-portal/internal/models"

// Screen is the rendered view of one workflow state.
type Screen struct {
	State models.WorkflowState `json:"state"`
	Title string               `json:"title"`
	Body  string               `json:"body"`
	// Placeholder marks the visible error screen produced for a state the
	// renderer does not declare. It is never produced for a known state.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Renderer turns a workflow state plus accumulated data into a screen. It must
// be total over the declared state set: every declared state has exactly one
// rendering branch, and an undeclared state yields a visible error placeholder
// rather than failing.
type Renderer interface {
	Render(state models.WorkflowState, data map[string]string) Screen
}
