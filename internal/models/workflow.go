// Package models defines the core data structures for the IOOPS verification portal.
//
// It includes the workflow state enumeration, the remote verification record,
// recipient submissions, persisted session snapshots, and the event payloads
// shared across modules.
package models

// WorkflowState identifies the screen a verification session is currently on.
// The set of valid states is closed; exactly one state is active per session.
type WorkflowState string

const (
	// StateEntry is the landing screen shown before the recipient begins.
	StateEntry WorkflowState = "ENTRY"
	// StatePersonalInfo collects full name, date of birth, nationality and address.
	StatePersonalInfo WorkflowState = "PERSONAL_INFO"
	// StateDocumentInfo collects the identity document declaration.
	StateDocumentInfo WorkflowState = "DOCUMENT_INFO"
	// StateCaptureBriefing explains the two captures before the camera opens.
	StateCaptureBriefing WorkflowState = "CAPTURE_BRIEFING"
	// StateCaptureDocument runs the live document capture.
	StateCaptureDocument WorkflowState = "CAPTURE_DOCUMENT"
	// StateReviewDocument shows the captured document for accept or retake.
	StateReviewDocument WorkflowState = "REVIEW_DOCUMENT"
	// StateCaptureFace runs the face capture sequence.
	StateCaptureFace WorkflowState = "CAPTURE_FACE"
	// StateReviewFace shows the captured face image for accept or retake.
	StateReviewFace WorkflowState = "REVIEW_FACE"
	// StateSubmitting is active while the submission call is in flight.
	StateSubmitting WorkflowState = "SUBMITTING"
	// StateSubmissionError is entered when the submission call fails.
	StateSubmissionError WorkflowState = "SUBMISSION_ERROR"
	// StateComplete means documents were submitted and await review.
	StateComplete WorkflowState = "COMPLETE"
	// StateEscrow shows escrow instructions and collects the payment receipt.
	StateEscrow WorkflowState = "ESCROW"
	// StatePaymentReview is active while the uploaded receipt awaits review.
	StatePaymentReview WorkflowState = "PAYMENT_REVIEW"
	// StateCodeReady displays the issued one-time security code.
	StateCodeReady WorkflowState = "CODE_READY"
	// StateFinished means the security code was redeemed. Terminal.
	StateFinished WorkflowState = "FINISHED"
)

// AllStates lists every declared workflow state in wizard order.
var AllStates = []WorkflowState{
	StateEntry,
	StatePersonalInfo,
	StateDocumentInfo,
	StateCaptureBriefing,
	StateCaptureDocument,
	StateReviewDocument,
	StateCaptureFace,
	StateReviewFace,
	StateSubmitting,
	StateSubmissionError,
	StateComplete,
	StateEscrow,
	StatePaymentReview,
	StateCodeReady,
	StateFinished,
}

// Known reports whether s is one of the declared workflow states.
func (s WorkflowState) Known() bool {
	for _, k := range AllStates {
		if s == k {
			return true
		}
	}
	return false
}
