package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meridian-ops/ioops-portal/internal/models"
	"github.com/meridian-ops/ioops-portal/internal/session"
)

func TestCreateHTTPRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		url    string
		body   interface{}
	}{
		{
			name:   "GET request with no body",
			method: http.MethodGet,
			url:    "/test",
			body:   nil,
		},
		{
			name:   "POST request with JSON body",
			method: http.MethodPost,
			url:    "/test",
			body:   map[string]string{"key": "value"},
		},
		{
			name:   "POST request with struct body",
			method: http.MethodPost,
			url:    "/test",
			body:   models.PersonalInfo{FullName: "Ada Lovelace"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := CreateHTTPRequest(t, tt.method, tt.url, tt.body)
			if req.Method != tt.method {
				t.Errorf("Expected method %s, got %s", tt.method, req.Method)
			}
			if req.URL.Path != tt.url {
				t.Errorf("Expected URL %s, got %s", tt.url, req.URL.Path)
			}
		})
	}
}

func TestAssertJSONResponseDecodesEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	rr.Body.WriteString(`{"status":"ok","result":{"value":1}}`)

	response := AssertJSONResponse(t, rr, "ok")
	if response["result"] == nil {
		t.Error("Expected result payload to be returned")
	}
}

func TestSeedSnapshot(t *testing.T) {
	store := session.NewInMemoryStore()
	SeedSnapshot(t, store, "tok_seed", models.StateEscrow, map[string]string{"full_name": "Ada Lovelace"})

	snap, err := store.Load(context.Background(), "tok_seed")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if snap == nil || snap.State != models.StateEscrow {
		t.Fatalf("seeded snapshot not loadable: %+v", snap)
	}
	if snap.Data["full_name"] != "Ada Lovelace" {
		t.Error("seeded data missing")
	}
}

func TestSampleRecordIsValid(t *testing.T) {
	rec := SampleRecord("v1", "tok_1", models.StatusPending)
	if err := rec.Validate(); err != nil {
		t.Errorf("sample record should validate: %v", err)
	}
}

func TestMustMarshalRoundTrip(t *testing.T) {
	data := MustMarshalJSON(t, map[string]interface{}{"key": "value", "number": 123})
	var target map[string]interface{}
	MustUnmarshalJSON(t, data, &target)

	if target["key"] != "value" {
		t.Errorf("Expected key to be 'value', got %v", target["key"])
	}
	if target["number"].(float64) != 123 {
		t.Errorf("Expected number to be 123, got %v", target["number"])
	}
}
