package models

// EventKind names a server-pushed verification event.
type EventKind string

const (
	EventDocumentApproved     EventKind = "document_approved"
	EventDocumentRejected     EventKind = "document_rejected"
	EventAllDocumentsApproved EventKind = "all_documents_approved"
	EventPaymentApproved      EventKind = "payment_approved"
	EventPaymentRejected      EventKind = "payment_rejected"
)

// Event is the envelope delivered over the WebSocket connection. Delivery is
// at-least-once; handlers must be idempotent against duplicates.
type Event struct {
	Kind           EventKind `json:"event"`
	VerificationID string    `json:"verification_id,omitempty"`
	Token          string    `json:"token,omitempty"`
	DocumentType   string    `json:"document_type,omitempty"`
	Reason         string    `json:"reason,omitempty"`
}

// JoinMessage is sent after connecting to subscribe to a room. Recipients join
// their verification room; the admin console joins the shared admin room.
type JoinMessage struct {
	Action string `json:"action"`
	Token  string `json:"token,omitempty"`
}

// Join actions understood by the event source.
const (
	JoinVerification = "join_verification"
	JoinAdmin        = "join_admin"
)
