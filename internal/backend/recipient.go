package backend

import (
	"context"
	"fmt"

	"github.com/meridian-ops/ioops-portal/internal/models"
)

// SubmitInfoRequest bundles the personal and document declarations with the
// captured images for the one-shot submission call.
type SubmitInfoRequest struct {
	Personal models.PersonalInfo
	Document models.DocumentInfo
	// Images maps capture slots to JPEG blobs: document, address_proof, face.
	Images map[string][]byte
}

// GenerateCodeResponse carries the issued one-time security code.
type GenerateCodeResponse struct {
	SecurityCode string `json:"security_code"`
	GeneratedAt  string `json:"generated_at,omitempty"`
}

// GetVerification loads the verification record for a session token.
func (c *Client) GetVerification(ctx context.Context, token string) (*models.VerificationRecord, error) {
	var rec models.VerificationRecord
	if err := c.getJSON(ctx, "/verification/"+token, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SubmitInfo submits personal info, the document declaration, and the captured
// images as one multipart request.
func (c *Client) SubmitInfo(ctx context.Context, token string, req SubmitInfoRequest) error {
	fields := map[string]string{
		"full_name":       req.Personal.FullName,
		"date_of_birth":   req.Personal.DateOfBirth,
		"nationality":     req.Personal.Nationality,
		"address":         req.Personal.Address,
		"phone":           req.Personal.Phone,
		"document_type":   req.Document.DocumentType,
		"issuing_country": req.Document.IssuingCountry,
		"document_number": req.Document.DocumentNumber,
		"id_expiry_date":  req.Document.ExpiryDate,
	}
	var files []multipartFile
	for slot, blob := range req.Images {
		files = append(files, multipartFile{
			Field:    slot,
			Filename: fmt.Sprintf("%s.jpg", slot),
			Data:     blob,
		})
	}
	return c.postMultipart(ctx, "/verification/"+token+"/submit-info", fields, files, nil)
}

// UploadReceipt uploads the payment receipt file.
func (c *Client) UploadReceipt(ctx context.Context, token, filename string, data []byte) error {
	files := []multipartFile{{Field: "receipt", Filename: filename, Data: data}}
	return c.postMultipart(ctx, "/verification/"+token+"/upload-receipt", nil, files, nil)
}

// ConfirmEscrow acknowledges the escrow instructions.
func (c *Client) ConfirmEscrow(ctx context.Context, token string) error {
	return c.postJSON(ctx, "/verification/"+token+"/confirm-escrow", nil, nil)
}

// GenerateCode asks the backend to issue the one-time security code. Only
// valid once all approval conditions are met server-side.
func (c *Client) GenerateCode(ctx context.Context, token string) (*GenerateCodeResponse, error) {
	var resp GenerateCodeResponse
	if err := c.postJSON(ctx, "/verification/"+token+"/generate-code", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResubmitDocument replaces one rejected document with a fresh capture.
func (c *Client) ResubmitDocument(ctx context.Context, token, documentID string, blob []byte) error {
	files := []multipartFile{{Field: "document", Filename: documentID + ".jpg", Data: blob}}
	return c.postMultipart(ctx, "/verification/"+token+"/resubmit/"+documentID, nil, files, nil)
}

// DownloadReceipt fetches the generated receipt PDF.
func (c *Client) DownloadReceipt(ctx context.Context, token string) ([]byte, error) {
	return c.getBytes(ctx, "/verification/"+token+"/receipt")
}
