package backend

import (
	"context"

	"github.com/meridian-ops/ioops-portal/internal/models"
)

type configTemplatesResponse struct {
	Templates []models.ShipmentTemplate `json:"templates"`
}

// TemplatePreviewResponse is the expanded event timeline for a template.
type TemplatePreviewResponse struct {
	Events []models.ShipmentEvent `json:"events"`
}

// ListConfigTemplates fetches the shipment agent's route templates.
func (c *Client) ListConfigTemplates(ctx context.Context) ([]models.ShipmentTemplate, error) {
	var resp configTemplatesResponse
	if err := c.getJSON(ctx, adminBasePath+"/shipment-agent/config-templates", &resp); err != nil {
		return nil, err
	}
	return resp.Templates, nil
}

// TemplatePreview expands a template into a concrete timeline without
// committing it.
func (c *Client) TemplatePreview(ctx context.Context, req models.TemplatePreviewRequest) (*TemplatePreviewResponse, error) {
	var resp TemplatePreviewResponse
	if err := c.postJSON(ctx, adminBasePath+"/shipment-agent/template-preview", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TemplateCreate commits a previewed timeline against a shipment.
func (c *Client) TemplateCreate(ctx context.Context, req models.TemplateCreateRequest) error {
	return c.postJSON(ctx, adminBasePath+"/shipment-agent/template-create", req, nil)
}
