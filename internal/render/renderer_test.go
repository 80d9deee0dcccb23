package render

import (
	"strings"
	"testing"

	"github.com/meridian-ops/ioops-portal/internal/models"
)

func TestRenderIsTotalOverDeclaredStates(t *testing.T) {
	r, err := NewHTMLRenderer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, state := range models.AllStates {
		screen := r.Render(state, map[string]string{})
		if screen.Placeholder {
			t.Errorf("declared state %s rendered the placeholder", state)
		}
		if screen.Body == "" {
			t.Errorf("declared state %s rendered an empty body", state)
		}
		if screen.Title == "" {
			t.Errorf("declared state %s has no title", state)
		}
	}
}

func TestRenderUnknownStateYieldsPlaceholder(t *testing.T) {
	r, err := NewHTMLRenderer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	screen := r.Render(models.WorkflowState("STEP_42_IMPOSSIBLE"), nil)
	if !screen.Placeholder {
		t.Fatal("unknown state did not render the placeholder")
	}
	if !strings.Contains(screen.Body, "Screen Unavailable") {
		t.Errorf("placeholder body missing error copy: %q", screen.Body)
	}
}

func TestRenderFillsAccumulatedData(t *testing.T) {
	r, err := NewHTMLRenderer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	screen := r.Render(models.StatePersonalInfo, map[string]string{
		"full_name": "Ada Lovelace",
	})
	if !strings.Contains(screen.Body, `value="Ada Lovelace"`) {
		t.Error("previously entered data not pre-filled on re-render")
	}

	code := r.Render(models.StateCodeReady, map[string]string{"security_code": "483-291"})
	if !strings.Contains(code.Body, "483-291") {
		t.Error("security code not rendered")
	}
}

func TestRenderEscapesUserData(t *testing.T) {
	r, err := NewHTMLRenderer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	screen := r.Render(models.StatePersonalInfo, map[string]string{
		"full_name": `<script>alert(1)</script>`,
	})
	if strings.Contains(screen.Body, "<script>alert(1)</script>") {
		t.Error("user data rendered without escaping")
	}
}
