package models

import (
	"errors"
	"time"
)

// VerificationStatus is the backend's lifecycle status for a verification.
type VerificationStatus string

const (
	StatusPending            VerificationStatus = "pending"
	StatusDocumentsSubmitted VerificationStatus = "documents_submitted"
	StatusDocumentsApproved  VerificationStatus = "documents_approved"
	StatusPaymentSubmitted   VerificationStatus = "payment_submitted"
	StatusCompleted          VerificationStatus = "completed"
)

// IsValidVerificationStatus checks if the given status is one the backend is known to emit.
func IsValidVerificationStatus(s VerificationStatus) bool {
	switch s {
	case StatusPending, StatusDocumentsSubmitted, StatusDocumentsApproved, StatusPaymentSubmitted, StatusCompleted:
		return true
	default:
		return false
	}
}

// Document type identifiers used by the capture slots and the review queue.
const (
	DocumentPassport       = "passport"
	DocumentProofOfAddress = "proof_of_address"
	DocumentSelfie         = "selfie"
)

// Error variables for record validation and testability.
var (
	ErrMissingToken     = errors.New("verification record has no token")
	ErrMissingRecordID  = errors.New("verification record has no id")
	ErrUnknownStatus    = errors.New("verification record has an unknown status")
	ErrMalformedPayload = errors.New("malformed backend payload")
)

// VerificationRecord is the backend's source of truth for a verification.
// It is read-only from the portal's perspective; any locally cached workflow
// state is provisional until reconciled against a freshly fetched record.
type VerificationRecord struct {
	ID    string             `json:"id"`
	Token string             `json:"token"`
	Name  string             `json:"recipient_name,omitempty"`
	Email string             `json:"recipient_email,omitempty"`

	Status   VerificationStatus `json:"status"`
	Progress Progress           `json:"progress"`

	PassportApproved       *bool `json:"passport_approved"`
	ProofOfAddressApproved *bool `json:"proof_of_address_approved"`
	SelfieApproved         *bool `json:"selfie_approved"`
	AllDocumentsApproved   *bool `json:"all_documents_approved"`

	PassportRejectionReason       string `json:"passport_rejection_reason,omitempty"`
	ProofOfAddressRejectionReason string `json:"proof_of_address_rejection_reason,omitempty"`
	SelfieRejectionReason         string `json:"selfie_rejection_reason,omitempty"`

	EscrowStatus      string     `json:"escrow_status,omitempty"`
	EscrowAmount      string     `json:"escrow_amount,omitempty"`
	PaymentReceiptURL string     `json:"payment_receipt_url,omitempty"`
	RejectionReason   string     `json:"rejection_reason,omitempty"`
	RejectedAt        *time.Time `json:"rejected_at,omitempty"`

	SecurityCode      string     `json:"security_code,omitempty"`
	CodeUsedAt        *time.Time `json:"code_used_at,omitempty"`
	ApprovalTimestamp *time.Time `json:"approval_timestamp,omitempty"`

	IDExpiryDate string `json:"id_expiry_date,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// Progress carries the backend's coarse progress flags.
type Progress struct {
	InfoSubmitted     bool `json:"info_submitted"`
	DocumentsReviewed bool `json:"documents_reviewed"`
	EscrowConfirmed   bool `json:"escrow_confirmed"`
	CodeGenerated     bool `json:"code_generated"`
}

// Validate flags malformed backend payloads at the API boundary rather than
// letting zero values leak into gating decisions.
func (r *VerificationRecord) Validate() error {
	if r.Token == "" {
		return ErrMissingToken
	}
	if r.ID == "" {
		return ErrMissingRecordID
	}
	if !IsValidVerificationStatus(r.Status) {
		return ErrUnknownStatus
	}
	return nil
}

// DocumentsApproved reports whether the backend has approved every document.
func (r *VerificationRecord) DocumentsApproved() bool {
	return r.AllDocumentsApproved != nil && *r.AllDocumentsApproved
}

// EscrowConfirmed reports whether the payment receipt was approved.
func (r *VerificationRecord) EscrowConfirmed() bool {
	return r.EscrowStatus == "confirmed" || r.Progress.EscrowConfirmed
}

// Merge folds a freshly polled record into r. Per-document approval fields are
// only overwritten when the update carries a decision; a null from the backend
// must not clear an approval the recipient has already seen.
func (r *VerificationRecord) Merge(update *VerificationRecord) {
	if update == nil {
		return
	}
	if update.PassportApproved != nil {
		r.PassportApproved = update.PassportApproved
	}
	if update.ProofOfAddressApproved != nil {
		r.ProofOfAddressApproved = update.ProofOfAddressApproved
	}
	if update.SelfieApproved != nil {
		r.SelfieApproved = update.SelfieApproved
	}
	if update.AllDocumentsApproved != nil {
		r.AllDocumentsApproved = update.AllDocumentsApproved
	}

	r.Status = update.Status
	r.Progress = update.Progress
	r.EscrowStatus = update.EscrowStatus
	r.PaymentReceiptURL = update.PaymentReceiptURL
	r.CodeUsedAt = update.CodeUsedAt
	r.ApprovalTimestamp = update.ApprovalTimestamp
	r.RejectionReason = update.RejectionReason
	r.RejectedAt = update.RejectedAt
}

// Shipment is a backend shipment row shown in the admin console.
type Shipment struct {
	TrackingID       string     `json:"tracking_id"`
	Origin           string     `json:"origin,omitempty"`
	Destination      string     `json:"destination,omitempty"`
	Status           string     `json:"status,omitempty"`
	RecipientName    string     `json:"recipient_name,omitempty"`
	VerificationLink string     `json:"verification_link,omitempty"`
	SecurityCode     string     `json:"security_code,omitempty"`
	FailedAttempts   int        `json:"failed_attempts,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
}
