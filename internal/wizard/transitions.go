// Package wizard implements the gated linear workflow engine driving recipient
// verification.
//
// The engine owns a fixed transition table, the accumulated form data, and the
// captured media slots for one session. Control flow is: interaction →
// validation → mutate data → transition legality lookup → re-render. A
// transition not present in the table is a logged no-op, never a crash.
package wizard

import "github.com/meridian-ops/ioops-portal/internal/models"

// Transitions maps each workflow state to its ordered set of permitted
// successors. Every state reachable from ENTRY appears as a key; a terminal
// state has an empty successor set. The flow is strictly forward-gated except
// for the capture/review retake cycles and the submission-error retry loop,
// which returns to the face review screen rather than the start.
var Transitions = map[models.WorkflowState][]models.WorkflowState{
	models.StateEntry:           {models.StatePersonalInfo},
	models.StatePersonalInfo:    {models.StateDocumentInfo},
	models.StateDocumentInfo:    {models.StateCaptureBriefing},
	models.StateCaptureBriefing: {models.StateCaptureDocument},
	models.StateCaptureDocument: {models.StateReviewDocument},
	models.StateReviewDocument:  {models.StateCaptureFace, models.StateCaptureDocument},
	models.StateCaptureFace:     {models.StateReviewFace},
	models.StateReviewFace:      {models.StateSubmitting, models.StateCaptureFace},
	models.StateSubmitting:      {models.StateComplete, models.StateSubmissionError},
	models.StateSubmissionError: {models.StateReviewFace},
	models.StateComplete:        {models.StateEscrow},
	models.StateEscrow:          {models.StatePaymentReview},
	models.StatePaymentReview:   {models.StateCodeReady, models.StateEscrow},
	models.StateCodeReady:       {models.StateFinished},
	models.StateFinished:        {},
}

// CanTransition reports whether target is a permitted successor of current.
// An unknown target is treated identically to a disallowed one.
func CanTransition(current, target models.WorkflowState) bool {
	for _, next := range Transitions[current] {
		if next == target {
			return true
		}
	}
	return false
}
