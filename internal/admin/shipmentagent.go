package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meridian-ops/ioops-portal/internal/backend"
	"github.com/meridian-ops/ioops-portal/internal/models"
)

// ConfigTemplates fetches the shipment agent's route templates for the
// timeline generator panel.
func (c *Controller) ConfigTemplates(ctx context.Context) ([]models.ShipmentTemplate, error) {
	templates, err := c.client.ListConfigTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list config templates: %w", err)
	}
	return templates, nil
}

// PreviewTimeline expands a template into a concrete event timeline without
// committing it, so the operator can inspect it first.
func (c *Controller) PreviewTimeline(ctx context.Context, templateID, trackingID, journeyType string) ([]models.ShipmentEvent, error) {
	if templateID == "" {
		return nil, fmt.Errorf("a template must be selected")
	}
	resp, err := c.client.TemplatePreview(ctx, models.TemplatePreviewRequest{
		TemplateID:  templateID,
		TrackingID:  trackingID,
		JourneyType: journeyType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to preview timeline: %w", err)
	}
	return resp.Events, nil
}

// CreateTimeline commits a previewed timeline against a shipment.
func (c *Controller) CreateTimeline(ctx context.Context, templateID, trackingID, journeyType string) error {
	if templateID == "" || trackingID == "" {
		return fmt.Errorf("template and tracking ID are required")
	}
	err := c.client.TemplateCreate(ctx, models.TemplateCreateRequest{
		TemplateID:  templateID,
		TrackingID:  trackingID,
		JourneyType: journeyType,
	})
	if err != nil {
		return fmt.Errorf("failed to create timeline: %w", err)
	}
	slog.Info("Controller.CreateTimeline: timeline created",
		"template", templateID, "trackingID", trackingID, "journeyType", journeyType)
	return nil
}

// Shipments fetches the shipment rows shown alongside the review queue.
func (c *Controller) Shipments(ctx context.Context) ([]models.Shipment, error) {
	return c.client.ListShipments(ctx)
}

// GenerateVerification asks the backend to mint a new verification for a
// shipment and returns its link.
func (c *Controller) GenerateVerification(ctx context.Context, trackingID string) (*backend.GenerateVerificationResponse, error) {
	if trackingID == "" {
		return nil, fmt.Errorf("a tracking ID is required")
	}
	return c.client.GenerateVerification(ctx, trackingID)
}
