package models

import (
	"testing"
	"time"
)

func TestIsOver18Boundary(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		dob  time.Time
		want bool
	}{
		{"exactly 18 today", time.Date(2008, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"18 tomorrow", time.Date(2008, 6, 16, 0, 0, 0, 0, time.UTC), false},
		{"18 last month", time.Date(2008, 5, 20, 0, 0, 0, 0, time.UTC), true},
		{"birthday later this year", time.Date(2008, 12, 1, 0, 0, 0, 0, time.UTC), false},
		{"well over", time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"well under", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		if got := IsOver18(tc.dob, now); got != tc.want {
			t.Errorf("%s: IsOver18 = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPersonalInfoValidate(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	info := PersonalInfo{
		FullName:    "Ada Lovelace",
		DateOfBirth: "1990-12-10",
		Nationality: "GB",
		Address:     "1 St James Square, London",
	}
	if errs := info.Validate(now); !errs.Valid() {
		t.Fatalf("expected valid submission, got %v", errs)
	}

	underage := info
	underage.DateOfBirth = "2010-01-01"
	errs := underage.Validate(now)
	if errs.Valid() {
		t.Fatal("expected underage submission to fail validation")
	}
	if errs["date_of_birth"] != ErrUnderage.Error() {
		t.Errorf("unexpected date_of_birth error: %q", errs["date_of_birth"])
	}

	empty := PersonalInfo{}
	errs = empty.Validate(now)
	for _, field := range []string{"full_name", "date_of_birth", "nationality", "address"} {
		if errs[field] == "" {
			t.Errorf("expected validation error for %s", field)
		}
	}
}

func TestDocumentInfoValidate(t *testing.T) {
	doc := DocumentInfo{
		DocumentType:   "passport",
		IssuingCountry: "DE",
		DocumentNumber: "C01X00T47",
		ExpiryDate:     "2030-01-01",
	}
	if errs := doc.Validate(); !errs.Valid() {
		t.Fatalf("expected valid declaration, got %v", errs)
	}

	doc.DocumentNumber = "AB1"
	if errs := doc.Validate(); errs["document_number"] == "" {
		t.Error("expected short document number to fail validation")
	}
}

func TestExpiredDocumentIsSoftWarningOnly(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	doc := DocumentInfo{
		DocumentType:   "passport",
		IssuingCountry: "DE",
		DocumentNumber: "C01X00T47",
		ExpiryDate:     "2020-01-01",
	}
	// An expired document still validates; it only carries an advisory.
	if errs := doc.Validate(); !errs.Valid() {
		t.Fatalf("expired document must not block submission, got %v", errs)
	}
	if doc.ExpiryWarning(now) == "" {
		t.Error("expected expiry warning for a document expired in the past")
	}

	doc.ExpiryDate = "2030-01-01"
	if doc.ExpiryWarning(now) != "" {
		t.Error("unexpected expiry warning for a future expiry date")
	}
}

func TestVerificationRecordValidate(t *testing.T) {
	rec := VerificationRecord{ID: "v_1", Token: "tok_abc", Status: StatusPending}
	if err := rec.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := rec
	bad.Status = "definitely_not_a_status"
	if err := bad.Validate(); err != ErrUnknownStatus {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}

	noToken := rec
	noToken.Token = ""
	if err := noToken.Validate(); err != ErrMissingToken {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}

func TestMergePreservesApprovals(t *testing.T) {
	approved := true
	rec := VerificationRecord{
		ID: "v_1", Token: "tok_abc", Status: StatusDocumentsSubmitted,
		PassportApproved: &approved,
	}

	// A poll result with null approval fields must not clear approvals.
	update := VerificationRecord{ID: "v_1", Token: "tok_abc", Status: StatusDocumentsSubmitted}
	rec.Merge(&update)
	if rec.PassportApproved == nil || !*rec.PassportApproved {
		t.Fatal("Merge cleared an approval the backend did not revoke")
	}

	// A poll result carrying decisions applies them.
	rejected := false
	all := true
	update2 := VerificationRecord{
		ID: "v_1", Token: "tok_abc", Status: StatusDocumentsApproved,
		SelfieApproved: &rejected, AllDocumentsApproved: &all,
	}
	rec.Merge(&update2)
	if rec.Status != StatusDocumentsApproved {
		t.Errorf("status not updated, got %s", rec.Status)
	}
	if rec.SelfieApproved == nil || *rec.SelfieApproved {
		t.Error("selfie decision not applied")
	}
	if !rec.DocumentsApproved() {
		t.Error("all_documents_approved not applied")
	}
}
