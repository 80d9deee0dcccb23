package backend

import (
	"context"

	"github.com/meridian-ops/ioops-portal/internal/models"
)

// adminBasePath prefixes every console-side endpoint, keeping the recipient
// and admin surfaces distinct under a single base URL.
const adminBasePath = "/admin"

// listVerificationsResponse is the admin list envelope.
type listVerificationsResponse struct {
	Verifications []models.VerificationRecord `json:"verifications"`
}

type listShipmentsResponse struct {
	Shipments []models.Shipment `json:"shipments"`
}

type documentDecision struct {
	DocumentType string `json:"document_type"`
	Reason       string `json:"reason,omitempty"`
}

type paymentDecision struct {
	Reason string `json:"reason,omitempty"`
}

// GenerateVerificationResponse carries the link handed to a recipient.
type GenerateVerificationResponse struct {
	Token            string `json:"token"`
	VerificationLink string `json:"verification_link"`
}

// SecurityCodeResponse reveals a shipment's current security code.
type SecurityCodeResponse struct {
	SecurityCode string `json:"security_code"`
	UsedAt       string `json:"used_at,omitempty"`
}

// ListVerifications fetches the admin review queue.
func (c *Client) ListVerifications(ctx context.Context) ([]models.VerificationRecord, error) {
	var resp listVerificationsResponse
	if err := c.getJSON(ctx, adminBasePath+"/verifications", &resp); err != nil {
		return nil, err
	}
	return resp.Verifications, nil
}

// ApproveDocument approves one document on a verification.
func (c *Client) ApproveDocument(ctx context.Context, id, documentType string) error {
	return c.postJSON(ctx, adminBasePath+"/verifications/"+id+"/approve-document",
		documentDecision{DocumentType: documentType}, nil)
}

// RejectDocument rejects one document with a reason shown to the recipient.
func (c *Client) RejectDocument(ctx context.Context, id, documentType, reason string) error {
	return c.postJSON(ctx, adminBasePath+"/verifications/"+id+"/reject-document",
		documentDecision{DocumentType: documentType, Reason: reason}, nil)
}

// ApprovePayment approves the uploaded payment receipt.
func (c *Client) ApprovePayment(ctx context.Context, id string) error {
	return c.postJSON(ctx, adminBasePath+"/verifications/"+id+"/approve-payment", nil, nil)
}

// RejectPayment rejects the uploaded payment receipt with a reason.
func (c *Client) RejectPayment(ctx context.Context, id, reason string) error {
	return c.postJSON(ctx, adminBasePath+"/verifications/"+id+"/reject-payment",
		paymentDecision{Reason: reason}, nil)
}

// ListShipments fetches the shipments the console can act on.
func (c *Client) ListShipments(ctx context.Context) ([]models.Shipment, error) {
	var resp listShipmentsResponse
	if err := c.getJSON(ctx, adminBasePath+"/shipments", &resp); err != nil {
		return nil, err
	}
	return resp.Shipments, nil
}

// GenerateVerification creates a verification session for a shipment and
// returns the recipient-facing link.
func (c *Client) GenerateVerification(ctx context.Context, trackingID string) (*GenerateVerificationResponse, error) {
	var resp GenerateVerificationResponse
	if err := c.postJSON(ctx, adminBasePath+"/shipments/"+trackingID+"/generate-verification", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SecurityCode reveals the current security code for a shipment.
func (c *Client) SecurityCode(ctx context.Context, trackingID string) (*SecurityCodeResponse, error) {
	var resp SecurityCodeResponse
	if err := c.postJSON(ctx, adminBasePath+"/shipments/"+trackingID+"/security-code", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetAttempts clears a shipment's failed code-entry counter.
func (c *Client) ResetAttempts(ctx context.Context, trackingID string) error {
	return c.postJSON(ctx, adminBasePath+"/shipments/"+trackingID+"/reset-attempts", nil, nil)
}
