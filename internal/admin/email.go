package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meridian-ops/ioops-portal/internal/models"
)

// EmailStep is the position within the email modal's three-step flow.
type EmailStep string

const (
	EmailStepCompany  EmailStep = "company"
	EmailStepTemplate EmailStep = "template"
	EmailStepCompose  EmailStep = "compose"
)

// EmailModalState is the modal's accumulated selection. Opening the modal
// resets it; the steps only ever advance company -> template -> compose.
type EmailModalState struct {
	Open      bool
	Step      EmailStep
	Company   string
	Templates []models.EmailTemplate
	Template  *models.EmailTemplate

	FromAlias     string
	CustomSubject string
	TestMode      bool
	TestEmail     string
}

// OpenEmailModal resets the modal to the company selection step. A
// verification must be selected first; the recipient is taken from it.
func (c *Controller) OpenEmailModal() error {
	if _, err := c.requireSelection(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.email = EmailModalState{Open: true, Step: EmailStepCompany}
	return nil
}

// CloseEmailModal discards any accumulated modal state.
func (c *Controller) CloseEmailModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.email = EmailModalState{}
}

// EmailModal returns a copy of the modal state.
func (c *Controller) EmailModal() EmailModalState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.email
}

// ChooseCompany fetches that company's templates and advances to the
// template step.
func (c *Controller) ChooseCompany(ctx context.Context, company string) error {
	if err := c.requireEmailStep(EmailStepCompany); err != nil {
		return err
	}
	templates, err := c.client.ListEmailTemplates(ctx, company)
	if err != nil {
		return fmt.Errorf("failed to list templates for %s: %w", company, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.email.Company = company
	c.email.Templates = templates
	c.email.Step = EmailStepTemplate
	return nil
}

// ChooseTemplate selects one of the fetched templates and advances to the
// compose step.
func (c *Controller) ChooseTemplate(templateID string) error {
	if err := c.requireEmailStep(EmailStepTemplate); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.email.Templates {
		if c.email.Templates[i].ID == templateID {
			t := c.email.Templates[i]
			c.email.Template = &t
			c.email.Step = EmailStepCompose
			return nil
		}
	}
	return fmt.Errorf("template %s not offered for %s", templateID, c.email.Company)
}

// SetComposeOptions records the compose-step knobs before sending.
func (c *Controller) SetComposeOptions(fromAlias, customSubject string, testMode bool, testEmail string) error {
	if err := c.requireEmailStep(EmailStepCompose); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.email.FromAlias = fromAlias
	c.email.CustomSubject = customSubject
	c.email.TestMode = testMode
	c.email.TestEmail = testEmail
	return nil
}

// SendEmail submits the composed email for the selected verification's
// recipient and closes the modal. Each invocation carries a fresh send ID, so
// the backend can dedupe network-level retries of the same request.
func (c *Controller) SendEmail(ctx context.Context, variables map[string]string) error {
	if err := c.requireEmailStep(EmailStepCompose); err != nil {
		return err
	}
	selected := c.Selected()
	if selected == nil {
		return fmt.Errorf("no verification selected")
	}

	c.mu.RLock()
	req := models.SendEmailRequest{
		SendID:     uuid.NewString(),
		Company:    c.email.Company,
		TemplateID: c.email.Template.ID,
		Recipient:  selected.Email,
		FromAlias:  c.email.FromAlias,
		Subject:    c.email.CustomSubject,
		Variables:  variables,
		TestMode:   c.email.TestMode,
		TestEmail:  c.email.TestEmail,
	}
	c.mu.RUnlock()

	if req.TestMode && req.TestEmail == "" {
		return fmt.Errorf("test mode requires a test address")
	}
	if err := c.client.SendEmail(ctx, req); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	slog.Info("Controller.SendEmail: email submitted",
		"sendID", req.SendID, "company", req.Company, "template", req.TemplateID, "testMode", req.TestMode)
	c.CloseEmailModal()
	return nil
}

func (c *Controller) requireEmailStep(step EmailStep) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.email.Open {
		return fmt.Errorf("email modal is not open")
	}
	if c.email.Step != step {
		return fmt.Errorf("email modal is at step %s, not %s", c.email.Step, step)
	}
	return nil
}
