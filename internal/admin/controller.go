// Package admin implements the review console controller: the verification
// queue, document and payment decisions, the templated email sender, and the
// shipment event generator.
//
// Console state lives on the controller instance, never in package globals;
// one controller exists per console session.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meridian-ops/ioops-portal/internal/backend"
	"github.com/meridian-ops/ioops-portal/internal/events"
	"github.com/meridian-ops/ioops-portal/internal/models"
	"github.com/meridian-ops/ioops-portal/internal/poll"
)

// refreshConcern names the list auto-refresh poller.
const refreshConcern = "admin-refresh"

// Controller owns the admin console state for one session.
type Controller struct {
	client   *backend.Client
	registry *poll.Registry

	mu            sync.RWMutex
	verifications []models.VerificationRecord
	selectedID    string
	email         EmailModalState
}

// NewController creates an admin console controller.
func NewController(client *backend.Client) *Controller {
	return &Controller{
		client:   client,
		registry: poll.NewRegistry(),
	}
}

// Start begins the 30-second list auto-refresh and wires the WebSocket
// handlers onto the given subscriber. Every handler re-fetches and re-derives
// console state, so duplicate event delivery is harmless.
func (c *Controller) Start(ctx context.Context, sub *events.Subscriber) {
	if sub != nil {
		refresh := func(models.Event) {
			if err := c.Refresh(ctx); err != nil {
				slog.Warn("Controller: event-driven refresh failed", "error", err)
			}
		}
		sub.On(models.EventDocumentApproved, refresh)
		sub.On(models.EventDocumentRejected, refresh)
		sub.On(models.EventAllDocumentsApproved, refresh)
		sub.On(models.EventPaymentApproved, refresh)
		sub.On(models.EventPaymentRejected, refresh)
	}

	c.registry.Start(ctx, refreshConcern, poll.AdminRefreshInterval, func(ctx context.Context) {
		if err := c.Refresh(ctx); err != nil {
			slog.Warn("Controller: scheduled refresh failed", "error", err)
		}
	})
}

// Stop cancels the auto-refresh poller.
func (c *Controller) Stop() {
	c.registry.StopAll()
}

// Refresh re-fetches the verification list. Safe to call repeatedly; the list
// is replaced wholesale, so repeated refreshes converge to the same state.
func (c *Controller) Refresh(ctx context.Context) error {
	list, err := c.client.ListVerifications(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh verifications: %w", err)
	}
	c.mu.Lock()
	c.verifications = list
	c.mu.Unlock()
	slog.Debug("Controller.Refresh: verification list updated", "count", len(list))
	return nil
}

// Verifications returns a copy of the current review queue.
func (c *Controller) Verifications() []models.VerificationRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.VerificationRecord, len(c.verifications))
	copy(out, c.verifications)
	return out
}

// Select marks a verification as the active one for decisions.
func (c *Controller) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, v := range c.verifications {
		if v.ID == id {
			c.selectedID = id
			return nil
		}
	}
	return fmt.Errorf("verification %s not in the current list", id)
}

// Selected returns the active verification, or nil if none is selected.
func (c *Controller) Selected() *models.VerificationRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, v := range c.verifications {
		if v.ID == c.selectedID {
			out := v
			return &out
		}
	}
	return nil
}

// ApproveDocument approves one document on the selected verification and
// refreshes the queue.
func (c *Controller) ApproveDocument(ctx context.Context, documentType string) error {
	id, err := c.requireSelection()
	if err != nil {
		return err
	}
	if err := c.client.ApproveDocument(ctx, id, documentType); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// RejectDocument rejects one document with a reason and refreshes the queue.
func (c *Controller) RejectDocument(ctx context.Context, documentType, reason string) error {
	id, err := c.requireSelection()
	if err != nil {
		return err
	}
	if reason == "" {
		return fmt.Errorf("a rejection reason is required")
	}
	if err := c.client.RejectDocument(ctx, id, documentType, reason); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// ApprovePayment approves the selected verification's payment receipt.
func (c *Controller) ApprovePayment(ctx context.Context) error {
	id, err := c.requireSelection()
	if err != nil {
		return err
	}
	if err := c.client.ApprovePayment(ctx, id); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// RejectPayment rejects the selected verification's payment receipt.
func (c *Controller) RejectPayment(ctx context.Context, reason string) error {
	id, err := c.requireSelection()
	if err != nil {
		return err
	}
	if reason == "" {
		return fmt.Errorf("a rejection reason is required")
	}
	if err := c.client.RejectPayment(ctx, id, reason); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

func (c *Controller) requireSelection() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selectedID == "" {
		return "", fmt.Errorf("no verification selected")
	}
	return c.selectedID, nil
}
