package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meridian-ops/ioops-portal/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c, err := NewClient(WithBaseURL(server.URL), WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestGetVerificationDecodesAndValidates(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verification/tok_abc" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(models.VerificationRecord{
			ID: "v_1", Token: "tok_abc", Status: models.StatusDocumentsSubmitted,
		})
	}))

	rec, err := c.GetVerification(context.Background(), "tok_abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != models.StatusDocumentsSubmitted {
		t.Errorf("unexpected status %s", rec.Status)
	}
}

func TestMalformedRecordRejectedAtBoundary(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Status the portal does not know; must be flagged, not rendered.
		w.Write([]byte(`{"id":"v_1","token":"tok_abc","status":"quantum_flux"}`))
	}))

	if _, err := c.GetVerification(context.Background(), "tok_abc"); err == nil {
		t.Fatal("expected validation error for unknown status")
	}
}

func TestSubmitInfoMultipart(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verification/tok_abc/submit-info" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			t.Fatalf("not a multipart request: %v", err)
		}
		if got := r.FormValue("full_name"); got != "Ada Lovelace" {
			t.Errorf("full_name = %q", got)
		}
		if got := r.FormValue("document_number"); got != "C01X00T47" {
			t.Errorf("document_number = %q", got)
		}
		file, header, err := r.FormFile("document")
		if err != nil {
			t.Fatalf("missing document file: %v", err)
		}
		defer file.Close()
		if header.Filename != "document.jpg" {
			t.Errorf("filename = %q", header.Filename)
		}
		w.WriteHeader(http.StatusOK)
	}))

	err := c.SubmitInfo(context.Background(), "tok_abc", SubmitInfoRequest{
		Personal: models.PersonalInfo{FullName: "Ada Lovelace", DateOfBirth: "1990-12-10"},
		Document: models.DocumentInfo{DocumentNumber: "C01X00T47"},
		Images:   map[string][]byte{"document": []byte("jpegbytes")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGenerateCode(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(GenerateCodeResponse{SecurityCode: "483-291"})
	}))

	resp, err := c.GenerateCode(context.Background(), "tok_abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.SecurityCode != "483-291" {
		t.Errorf("unexpected code %q", resp.SecurityCode)
	}
}

func TestAPIErrorSurfacesStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))

	err := c.ApprovePayment(context.Background(), "v_1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestExplicitTimeout(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	c.http.Timeout = 20 * time.Millisecond

	if _, err := c.GetVerification(context.Background(), "tok_abc"); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestConfirmEscrow(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/verification/tok_abc/confirm-escrow" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := c.ConfirmEscrow(context.Background(), "tok_abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResubmitDocumentMultipart(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verification/tok_abc/resubmit/doc_7" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			t.Fatalf("not a multipart request: %v", err)
		}
		file, header, err := r.FormFile("document")
		if err != nil {
			t.Fatalf("missing document file: %v", err)
		}
		defer file.Close()
		if header.Filename != "doc_7.jpg" {
			t.Errorf("filename = %q", header.Filename)
		}
		w.WriteHeader(http.StatusOK)
	}))

	err := c.ResubmitDocument(context.Background(), "tok_abc", "doc_7", []byte("jpegbytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListVerifications(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The console surface lives under /admin; the recipient surface does not.
		if r.URL.Path != "/admin/verifications" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"verifications": []models.VerificationRecord{
				{ID: "v_1", Token: "tok_a", Status: models.StatusPending},
				{ID: "v_2", Token: "tok_b", Status: models.StatusDocumentsSubmitted},
			},
		})
	}))

	list, err := c.ListVerifications(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[1].ID != "v_2" {
		t.Errorf("unexpected list %+v", list)
	}
}
