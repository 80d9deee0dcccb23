package models

import (
	"errors"
	"strings"
	"time"
)

// Validation constants for recipient submissions.
const (
	// MinDocumentNumberLength is the minimum accepted document number length.
	MinDocumentNumberLength = 5
	// MinimumAge is the youngest age permitted to complete verification.
	MinimumAge = 18
	// DateLayout is the wire format for dates entered on the wizard.
	DateLayout = "2006-01-02"
)

// Error variables for submission validation.
var (
	ErrFullNameRequired       = errors.New("full name is required")
	ErrDateOfBirthRequired    = errors.New("date of birth is required")
	ErrDateOfBirthInvalid     = errors.New("date of birth is not a valid date")
	ErrUnderage               = errors.New("you must be 18 or older to proceed")
	ErrNationalityRequired    = errors.New("nationality is required")
	ErrAddressRequired        = errors.New("residential address is required")
	ErrDocumentTypeRequired   = errors.New("document type is required")
	ErrIssuingCountryRequired = errors.New("issuing country is required")
	ErrDocumentNumberTooShort = errors.New("document number must be at least 5 characters")
	ErrExpiryDateRequired     = errors.New("expiry date is required")
	ErrExpiryDateInvalid      = errors.New("expiry date is not a valid date")
)

// FieldErrors maps field names to user-facing validation messages.
// An empty map means the screen may advance.
type FieldErrors map[string]string

// Valid reports whether no field failed validation.
func (f FieldErrors) Valid() bool { return len(f) == 0 }

// PersonalInfo is the recipient's personal information screen payload.
type PersonalInfo struct {
	FullName    string `json:"full_name"`
	DateOfBirth string `json:"date_of_birth"`
	Nationality string `json:"nationality"`
	Address     string `json:"address"`
	Phone       string `json:"phone,omitempty"`
}

// Validate computes field-level validity against the given reference time.
// Validation gates forward transition only; it never blocks data entry.
func (p *PersonalInfo) Validate(now time.Time) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(p.FullName) == "" {
		errs["full_name"] = ErrFullNameRequired.Error()
	}
	if p.DateOfBirth == "" {
		errs["date_of_birth"] = ErrDateOfBirthRequired.Error()
	} else if dob, err := time.Parse(DateLayout, p.DateOfBirth); err != nil {
		errs["date_of_birth"] = ErrDateOfBirthInvalid.Error()
	} else if !IsOver18(dob, now) {
		errs["date_of_birth"] = ErrUnderage.Error()
	}
	if p.Nationality == "" {
		errs["nationality"] = ErrNationalityRequired.Error()
	}
	if strings.TrimSpace(p.Address) == "" {
		errs["address"] = ErrAddressRequired.Error()
	}
	return errs
}

// IsOver18 reports whether someone born on dob has reached the minimum age by
// now, with correct month and day rollover: a birthday later in the current
// year has not happened yet.
func IsOver18(dob, now time.Time) bool {
	age := now.Year() - dob.Year()
	monthDiff := int(now.Month()) - int(dob.Month())
	if monthDiff < 0 || (monthDiff == 0 && now.Day() < dob.Day()) {
		age--
	}
	return age >= MinimumAge
}

// DocumentInfo is the identity document declaration screen payload.
type DocumentInfo struct {
	DocumentType   string `json:"document_type"`
	IssuingCountry string `json:"issuing_country"`
	DocumentNumber string `json:"document_number"`
	ExpiryDate     string `json:"expiry_date"`
}

// Validate computes field-level validity for the document declaration.
func (d *DocumentInfo) Validate() FieldErrors {
	errs := FieldErrors{}
	if d.DocumentType == "" {
		errs["document_type"] = ErrDocumentTypeRequired.Error()
	}
	if d.IssuingCountry == "" {
		errs["issuing_country"] = ErrIssuingCountryRequired.Error()
	}
	if len(strings.TrimSpace(d.DocumentNumber)) < MinDocumentNumberLength {
		errs["document_number"] = ErrDocumentNumberTooShort.Error()
	}
	if d.ExpiryDate == "" {
		errs["expiry_date"] = ErrExpiryDateRequired.Error()
	} else if _, err := time.Parse(DateLayout, d.ExpiryDate); err != nil {
		errs["expiry_date"] = ErrExpiryDateInvalid.Error()
	}
	return errs
}

// ExpiryWarning returns a soft advisory when the declared document is already
// expired. An expired document never blocks submission; it only prompts the
// note that additional review may be required.
func (d *DocumentInfo) ExpiryWarning(now time.Time) string {
	if d.ExpiryDate == "" {
		return ""
	}
	exp, err := time.Parse(DateLayout, d.ExpiryDate)
	if err != nil {
		return ""
	}
	if exp.Before(now.Truncate(24 * time.Hour)) {
		return "If your document is expired, you may still proceed, but verification may require additional review."
	}
	return ""
}
