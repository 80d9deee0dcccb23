package wizard

import (
	"context"
	"log/slog"

	"github.com/meridian-ops/ioops-portal/internal/models"
)

// DeriveState computes the workflow state implied by a backend verification
// record. The record is the source of truth: cached local state is only valid
// for screens the backend has no opinion about (everything before submission).
func DeriveState(rec *models.VerificationRecord, local models.WorkflowState) models.WorkflowState {
	if rec == nil {
		return local
	}
	switch rec.Status {
	case models.StatusPending:
		// Nothing submitted yet; the local pre-submission screen stands.
		if isPreSubmission(local) {
			return local
		}
		return models.StateEntry
	case models.StatusDocumentsSubmitted:
		return models.StateComplete
	case models.StatusDocumentsApproved:
		if rec.EscrowConfirmed() {
			return models.StateCodeReady
		}
		if rec.RejectionReason != "" || rec.RejectedAt != nil {
			// Receipt rejected: back to the escrow screen for re-upload.
			return models.StateEscrow
		}
		return models.StateEscrow
	case models.StatusPaymentSubmitted:
		if rec.EscrowConfirmed() {
			return models.StateCodeReady
		}
		return models.StatePaymentReview
	case models.StatusCompleted:
		if rec.CodeUsedAt != nil {
			return models.StateFinished
		}
		return models.StateCodeReady
	default:
		return local
	}
}

func isPreSubmission(s models.WorkflowState) bool {
	switch s {
	case models.StateEntry, models.StatePersonalInfo, models.StateDocumentInfo,
		models.StateCaptureBriefing, models.StateCaptureDocument, models.StateReviewDocument,
		models.StateCaptureFace, models.StateReviewFace, models.StateSubmitting,
		models.StateSubmissionError:
		return true
	}
	return false
}

// Reconcile re-derives the engine state from a freshly fetched backend record.
// The locally cached state is provisional; when the backend disagrees, the
// derived state is adopted directly (reconciliation is authoritative and does
// not route through the transition table), persisted, and re-rendered.
func (e *Engine) Reconcile(ctx context.Context, rec *models.VerificationRecord) {
	if rec == nil {
		return
	}
	if err := rec.Validate(); err != nil {
		slog.Error("Engine.Reconcile: rejecting malformed record", "error", err, "token", e.token)
		return
	}

	e.mu.Lock()
	derived := DeriveState(rec, e.state)
	changed := derived != e.state
	if changed {
		slog.Info("Engine.Reconcile: adopting backend-derived state",
			"token", e.token, "cached", e.state, "derived", derived, "status", rec.Status)
		e.state = derived
	}
	e.mu.Unlock()

	if changed {
		e.persist(ctx)
		e.render()
	}
}
