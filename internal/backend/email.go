package backend

import (
	"context"

	"github.com/meridian-ops/ioops-portal/internal/models"
)

type listTemplatesResponse struct {
	Templates []models.EmailTemplate `json:"templates"`
}

// ListEmailTemplates fetches the templates available for a company.
func (c *Client) ListEmailTemplates(ctx context.Context, company string) ([]models.EmailTemplate, error) {
	var resp listTemplatesResponse
	if err := c.getJSON(ctx, adminBasePath+"/email/templates/"+company, &resp); err != nil {
		return nil, err
	}
	return resp.Templates, nil
}

// SendEmail asks the backend to render and deliver a templated email. The
// send ID makes retried sends idempotent server-side.
func (c *Client) SendEmail(ctx context.Context, req models.SendEmailRequest) error {
	return c.postJSON(ctx, adminBasePath+"/email/send", req, nil)
}
