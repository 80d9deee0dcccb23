// Package render produces the HTML screen for each workflow state.
//
// Rendering fully replaces the screen container's content on every transition;
// nothing from a previous screen survives, which is what guarantees stale
// interaction handlers cannot leak between renders.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"

	"github.com/meridian-ops/ioops-portal/internal/models"
	"github.com/meridian-ops/ioops-portal/internal/wizard"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const placeholderTemplate = "UNKNOWN_STATE"

// screenTitles maps each declared state to its heading shown in the page chrome.
var screenTitles = map[models.WorkflowState]string{
	models.StateEntry:           "Identity Verification",
	models.StatePersonalInfo:    "Personal Information",
	models.StateDocumentInfo:    "Document Declaration",
	models.StateCaptureBriefing: "Document Capture",
	models.StateCaptureDocument: "Capture Identity Document",
	models.StateReviewDocument:  "Review Document Image",
	models.StateCaptureFace:     "Capture Face Photograph",
	models.StateReviewFace:      "Review Face Photograph",
	models.StateSubmitting:      "Submitting",
	models.StateSubmissionError: "Submission Failed",
	models.StateComplete:        "Documents Under Review",
	models.StateEscrow:          "Escrow Confirmation",
	models.StatePaymentReview:   "Payment Under Review",
	models.StateCodeReady:       "Security Code Issued",
	models.StateFinished:        "Verification Complete",
}

// HTMLRenderer renders workflow screens from embedded templates. It is total
// over the declared state set; an undeclared state renders a visible error
// placeholder instead of failing.
type HTMLRenderer struct {
	templates *template.Template
}

// NewHTMLRenderer parses the embedded screen templates.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	funcs := template.FuncMap{
		"field": func(data map[string]string, key string) string { return data[key] },
	}
	t, err := template.New("screens").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &HTMLRenderer{templates: t}, nil
}

// Render produces the screen for a state. Every declared state has exactly one
// template branch; anything else gets the placeholder.
func (r *HTMLRenderer) Render(state models.WorkflowState, data map[string]string) wizard.Screen {
	name := string(state)
	title, declared := screenTitles[state]
	if !declared || r.templates.Lookup(name) == nil {
		slog.Error("HTMLRenderer.Render: undeclared state, rendering placeholder", "state", state)
		return r.placeholder(state)
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("HTMLRenderer.Render: template execution failed", "state", state, "error", err)
		return r.placeholder(state)
	}
	return wizard.Screen{State: state, Title: title, Body: buf.String()}
}

func (r *HTMLRenderer) placeholder(state models.WorkflowState) wizard.Screen {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, placeholderTemplate, nil); err != nil {
		// Last resort: a static placeholder so Render never fails.
		return wizard.Screen{
			State: state, Title: "Screen Unavailable", Placeholder: true,
			Body: "<section class=\"screen screen-error\"><h2>Screen Unavailable</h2></section>",
		}
	}
	return wizard.Screen{State: state, Title: "Screen Unavailable", Body: buf.String(), Placeholder: true}
}
