package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/meridian-ops/ioops-portal/internal/models"
	"github.com/meridian-ops/ioops-portal/internal/util"
)

// decisionRequest carries an optional rejection reason.
type decisionRequest struct {
	DocumentType string `json:"document_type,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// emailStepRequest carries the email modal step payloads.
type emailStepRequest struct {
	Company       string            `json:"company,omitempty"`
	TemplateID    string            `json:"template_id,omitempty"`
	FromAlias     string            `json:"from_alias,omitempty"`
	CustomSubject string            `json:"custom_subject,omitempty"`
	TestMode      bool              `json:"test_mode,omitempty"`
	TestEmail     string            `json:"test_email,omitempty"`
	Variables     map[string]string `json:"variables,omitempty"`
}

// timelineRequest drives the shipment agent endpoints.
type timelineRequest struct {
	TemplateID  string `json:"template_id"`
	TrackingID  string `json:"tracking_id,omitempty"`
	JourneyType string `json:"journey_type,omitempty"`
}

func (s *Server) adminListHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.adminCtl.Refresh(r.Context()); err != nil {
		slog.Error("Server.adminListHandler: refresh failed", "error", err)
		writeJSONResponse(w, http.StatusBadGateway, models.Error("Review queue unavailable"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.adminCtl.Verifications()))
}

func (s *Server) adminSelectHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.adminCtl.Select(r.PathValue("id")); err != nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.adminCtl.Selected()))
}

// decisionBody decodes the optional decision payload, tolerating an empty body.
func decisionBody(r *http.Request) decisionRequest {
	defer r.Body.Close()
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return decisionRequest{}
	}
	return req
}

func (s *Server) adminApproveDocumentHandler(w http.ResponseWriter, r *http.Request) {
	req := decisionBody(r)
	if err := s.selectAndRun(r, func() error {
		return s.adminCtl.ApproveDocument(r.Context(), req.DocumentType)
	}); err != nil {
		writeJSONResponse(w, http.StatusBadGateway, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}

func (s *Server) adminRejectDocumentHandler(w http.ResponseWriter, r *http.Request) {
	req := decisionBody(r)
	if req.Reason == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("A rejection reason is required"))
		return
	}
	if err := s.selectAndRun(r, func() error {
		return s.adminCtl.RejectDocument(r.Context(), req.DocumentType, req.Reason)
	}); err != nil {
		writeJSONResponse(w, http.StatusBadGateway, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}

func (s *Server) adminApprovePaymentHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.selectAndRun(r, func() error {
		return s.adminCtl.ApprovePayment(r.Context())
	}); err != nil {
		writeJSONResponse(w, http.StatusBadGateway, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}

func (s *Server) adminRejectPaymentHandler(w http.ResponseWriter, r *http.Request) {
	req := decisionBody(r)
	if req.Reason == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("A rejection reason is required"))
		return
	}
	if err := s.selectAndRun(r, func() error {
		return s.adminCtl.RejectPayment(r.Context(), req.Reason)
	}); err != nil {
		writeJSONResponse(w, http.StatusBadGateway, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}

// selectAndRun binds the path id to the console selection before running a
// decision, refreshing the queue first when the id is not yet known.
func (s *Server) selectAndRun(r *http.Request, op func() error) error {
	id := r.PathValue("id")
	if err := s.adminCtl.Select(id); err != nil {
		if err := s.adminCtl.Refresh(r.Context()); err != nil {
			return err
		}
		if err := s.adminCtl.Select(id); err != nil {
			return err
		}
	}
	return op()
}

func (s *Server) adminShipmentsHandler(w http.ResponseWriter, r *http.Request) {
	shipments, err := s.adminCtl.Shipments(r.Context())
	if err != nil {
		slog.Error("Server.adminShipmentsHandler: fetch failed", "error", err)
		writeJSONResponse(w, http.StatusBadGateway, models.Error("Shipments unavailable"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(shipments))
}

func (s *Server) adminGenerateVerificationHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := s.adminCtl.GenerateVerification(r.Context(), r.PathValue("trackingID"))
	if err != nil {
		writeJSONResponse(w, http.StatusBadGateway, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(resp))
}

func (s *Server) adminEmailOpenHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.adminCtl.OpenEmailModal(); err != nil {
		writeJSONResponse(w, http.StatusConflict, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.adminCtl.EmailModal()))
}

func (s *Server) adminEmailCompanyHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req emailStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := s.adminCtl.ChooseCompany(r.Context(), req.Company); err != nil {
		writeJSONResponse(w, http.StatusConflict, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.adminCtl.EmailModal()))
}

func (s *Server) adminEmailTemplateHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req emailStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := s.adminCtl.ChooseTemplate(req.TemplateID); err != nil {
		writeJSONResponse(w, http.StatusConflict, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.adminCtl.EmailModal()))
}

func (s *Server) adminEmailSendHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req emailStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := s.adminCtl.SetComposeOptions(req.FromAlias, req.CustomSubject, req.TestMode, req.TestEmail); err != nil {
		writeJSONResponse(w, http.StatusConflict, models.Error(err.Error()))
		return
	}
	if err := s.adminCtl.SendEmail(r.Context(), req.Variables); err != nil {
		writeJSONResponse(w, http.StatusBadGateway, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}

func (s *Server) adminConfigTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	templates, err := s.adminCtl.ConfigTemplates(r.Context())
	if err != nil {
		writeJSONResponse(w, http.StatusBadGateway, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(templates))
}

func (s *Server) adminPreviewTimelineHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req timelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.TrackingID == "" {
		req.TrackingID = util.GenerateTrackingID()
	}
	events, err := s.adminCtl.PreviewTimeline(r.Context(), req.TemplateID, req.TrackingID, req.JourneyType)
	if err != nil {
		writeJSONResponse(w, http.StatusBadGateway, models.Error(err.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(events))
}

func (s *Server) adminCreateTimelineHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req timelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.TrackingID == "" {
		req.TrackingID = util.GenerateTrackingID()
	}
	if err := s.adminCtl.CreateTimeline(r.Context(), req.TemplateID, req.TrackingID, req.JourneyType); err != nil {
		writeJSONResponse(w, http.StatusBadGateway, models.Error(err.Error()))
		return
	}
	// Echo the tracking ID so the operator sees the generated default.
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"tracking_id": req.TrackingID}))
}
