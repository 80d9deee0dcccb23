package models

// EmailTemplate is a backend-managed template listed per company.
type EmailTemplate struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	Description string `json:"description,omitempty"`
}

// SendEmailRequest asks the backend to render and deliver a templated email.
// The portal never renders or delivers mail itself.
type SendEmailRequest struct {
	SendID     string            `json:"send_id"`
	Company    string            `json:"company"`
	TemplateID string            `json:"template_id"`
	Recipient  string            `json:"recipient"`
	FromAlias  string            `json:"from_alias,omitempty"`
	Subject    string            `json:"subject,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
	TestMode   bool              `json:"test_mode,omitempty"`
	TestEmail  string            `json:"test_email,omitempty"`
}
