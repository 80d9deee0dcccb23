package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/meridian-ops/ioops-portal/internal/backend"
	"github.com/meridian-ops/ioops-portal/internal/capture"
	"github.com/meridian-ops/ioops-portal/internal/models"
	"github.com/meridian-ops/ioops-portal/internal/poll"
	"github.com/meridian-ops/ioops-portal/internal/wizard"
)

// maxCaptureBytes bounds an uploaded capture or receipt body.
const maxCaptureBytes = 10 << 20

// statusConcern names the per-engine backend status poller.
const statusConcern = "status"

// transitionRequest is the body of POST /session/{token}/transition.
type transitionRequest struct {
	Target models.WorkflowState `json:"target"`
}

// screenResponse carries the rendered screen plus the active state.
type screenResponse struct {
	State  models.WorkflowState `json:"state"`
	Title  string               `json:"title"`
	Body   string               `json:"body"`
	Fields map[string]string    `json:"fields,omitempty"`
}

func toScreenResponse(screen wizard.Screen, data map[string]string) screenResponse {
	return screenResponse{State: screen.State, Title: screen.Title, Body: screen.Body, Fields: data}
}

func (s *Server) screenHandler(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	e := s.engine(r.Context(), token)
	writeJSONResponse(w, http.StatusOK, models.Success(toScreenResponse(e.Screen(), e.Data())))
}

func (s *Server) fieldsHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	token := r.PathValue("token")
	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		slog.Warn("Server.fieldsHandler: failed to decode JSON", "error", err, "token", token)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	e := s.engine(r.Context(), token)
	for key, value := range fields {
		e.SetField(key, value)
	}
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}

func (s *Server) transitionHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	token := r.PathValue("token")
	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.transitionHandler: failed to decode JSON", "error", err, "token", token)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	e := s.engine(r.Context(), token)

	// Forward moves off the data entry screens are gated on field validation.
	// Backward moves (retakes) are never validation-gated.
	if errs, warning := s.validateAdvance(e, req.Target); errs != nil {
		writeJSONResponse(w, http.StatusUnprocessableEntity, models.Response{
			Status: models.StatusError, Message: "Validation failed", Result: errs,
		})
		return
	} else if warning != "" {
		// Soft advisory only; the transition still proceeds below.
		e.SetField("expiry_warning", warning)
	}

	if !e.TransitionTo(r.Context(), req.Target) {
		writeJSONResponse(w, http.StatusConflict, models.Error("Transition not permitted from current state"))
		return
	}
	s.maintainPolling(e)
	writeJSONResponse(w, http.StatusOK, models.Success(toScreenResponse(e.Screen(), e.Data())))
}

// validateAdvance returns field errors blocking a forward transition, plus an
// optional soft warning that never blocks.
func (s *Server) validateAdvance(e *wizard.Engine, target models.WorkflowState) (models.FieldErrors, string) {
	data := e.Data()
	switch {
	case e.State() == models.StatePersonalInfo && target == models.StateDocumentInfo:
		info := personalInfoFrom(data)
		if errs := info.Validate(time.Now()); !errs.Valid() {
			return errs, ""
		}
	case e.State() == models.StateDocumentInfo && target == models.StateCaptureBriefing:
		doc := documentInfoFrom(data)
		if errs := doc.Validate(); !errs.Valid() {
			return errs, ""
		}
		return nil, doc.ExpiryWarning(time.Now())
	}
	return nil, ""
}

func personalInfoFrom(data map[string]string) models.PersonalInfo {
	return models.PersonalInfo{
		FullName:    data["full_name"],
		DateOfBirth: data["date_of_birth"],
		Nationality: data["nationality"],
		Address:     data["address"],
		Phone:       data["phone"],
	}
}

func documentInfoFrom(data map[string]string) models.DocumentInfo {
	return models.DocumentInfo{
		DocumentType:   data["document_type"],
		IssuingCountry: data["issuing_country"],
		DocumentNumber: data["document_number"],
		ExpiryDate:     data["expiry_date"],
	}
}

func (s *Server) captureHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	token := r.PathValue("token")
	slot := r.PathValue("slot")

	var captureType capture.CaptureType
	switch slot {
	case wizard.SlotDocument, wizard.SlotAddress:
		captureType = capture.TypeDocument
	case wizard.SlotFace:
		captureType = capture.TypeFace
	default:
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Unknown capture slot"))
		return
	}

	blob, err := io.ReadAll(io.LimitReader(r.Body, maxCaptureBytes))
	if err != nil || len(blob) == 0 {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Empty or unreadable capture body"))
		return
	}

	metrics, err := capture.AnalyzeFrameQuality(blob)
	if err != nil {
		slog.Warn("Server.captureHandler: undecodable capture", "error", err, "token", token, "slot", slot)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Capture is not a decodable image"))
		return
	}
	if !capture.IsQualityAcceptable(metrics, captureType) {
		writeJSONResponse(w, http.StatusUnprocessableEntity, models.Response{
			Status: models.StatusError, Message: "Capture quality rejected", Result: metrics,
		})
		return
	}

	e := s.engine(r.Context(), token)
	e.AttachMedia(slot, blob)

	// Audit archiving is a side channel; failures never block the workflow.
	if s.archive != nil {
		if err := s.archive.Store(r.Context(), token, slot, blob); err != nil {
			slog.Warn("Server.captureHandler: archive write failed", "error", err, "token", token, "slot", slot)
		}
	}
	writeJSONResponse(w, http.StatusOK, models.Success(metrics))
}

func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	e := s.engine(r.Context(), token)

	if !e.TransitionTo(r.Context(), models.StateSubmitting) {
		writeJSONResponse(w, http.StatusConflict, models.Error("Submission not permitted from current state"))
		return
	}

	data := e.Data()
	req := backend.SubmitInfoRequest{
		Personal: personalInfoFrom(data),
		Document: documentInfoFrom(data),
		Images:   make(map[string][]byte),
	}
	for _, slot := range e.MediaSlots() {
		req.Images[slot] = e.Media(slot)
	}

	if err := s.client.SubmitInfo(r.Context(), token, req); err != nil {
		slog.Error("Server.submitHandler: submission failed", "error", err, "token", token)
		// Captured media and entered data are retained for the retry.
		e.TransitionTo(r.Context(), models.StateSubmissionError)
		writeJSONResponse(w, http.StatusBadGateway, models.Error("Submission failed; your information has been retained"))
		return
	}

	e.TransitionTo(r.Context(), models.StateComplete)
	s.maintainPolling(e)
	slog.Info("Server.submitHandler: verification submitted", "token", token)
	writeJSONResponse(w, http.StatusOK, models.Success(toScreenResponse(e.Screen(), e.Data())))
}

func (s *Server) receiptHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	token := r.PathValue("token")

	if err := r.ParseMultipartForm(maxCaptureBytes); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Expected multipart form with a receipt file"))
		return
	}
	file, header, err := r.FormFile("receipt")
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing receipt file"))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxCaptureBytes))
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Unreadable receipt file"))
		return
	}

	e := s.engine(r.Context(), token)
	if e.State() != models.StateEscrow {
		writeJSONResponse(w, http.StatusConflict, models.Error("Receipt upload not permitted from current state"))
		return
	}
	if err := s.client.UploadReceipt(r.Context(), token, header.Filename, data); err != nil {
		slog.Error("Server.receiptHandler: upload failed", "error", err, "token", token)
		writeJSONResponse(w, http.StatusBadGateway, models.Error("Receipt upload failed; please try again"))
		return
	}

	e.TransitionTo(r.Context(), models.StatePaymentReview)
	s.maintainPolling(e)
	writeJSONResponse(w, http.StatusOK, models.Success(toScreenResponse(e.Screen(), e.Data())))
}

func (s *Server) escrowConfirmHandler(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	e := s.engine(r.Context(), token)
	if e.State() != models.StateEscrow {
		writeJSONResponse(w, http.StatusConflict, models.Error("Escrow confirmation not permitted from current state"))
		return
	}
	if err := s.client.ConfirmEscrow(r.Context(), token); err != nil {
		slog.Error("Server.escrowConfirmHandler: confirmation failed", "error", err, "token", token)
		writeJSONResponse(w, http.StatusBadGateway, models.Error("Escrow confirmation failed; please try again"))
		return
	}
	e.SetField("escrow_confirmed", "true")
	writeJSONResponse(w, http.StatusOK, models.Success(toScreenResponse(e.Screen(), e.Data())))
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	rec, err := s.client.GetVerification(r.Context(), token)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Verification not found"))
			return
		}
		slog.Error("Server.statusHandler: backend fetch failed", "error", err, "token", token)
		writeJSONResponse(w, http.StatusBadGateway, models.Error("Verification status unavailable"))
		return
	}

	e := s.engine(r.Context(), token)
	e.Reconcile(r.Context(), rec)
	s.maintainPolling(e)
	writeJSONResponse(w, http.StatusOK, models.Success(rec))
}

func (s *Server) codeHandler(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	resp, err := s.client.GenerateCode(r.Context(), token)
	if err != nil {
		slog.Error("Server.codeHandler: code generation failed", "error", err, "token", token)
		writeJSONResponse(w, http.StatusBadGateway, models.Error("Security code unavailable"))
		return
	}

	e := s.engine(r.Context(), token)
	e.SetField("security_code", resp.SecurityCode)
	e.TransitionTo(r.Context(), models.StateCodeReady)
	s.maintainPolling(e)
	writeJSONResponse(w, http.StatusOK, models.Success(toScreenResponse(e.Screen(), e.Data())))
}

func (s *Server) receiptPDFHandler(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	data, err := s.client.DownloadReceipt(r.Context(), token)
	if err != nil {
		slog.Error("Server.receiptPDFHandler: download failed", "error", err, "token", token)
		writeJSONResponse(w, http.StatusBadGateway, models.Error("Receipt unavailable"))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=verification-receipt.pdf")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("Server.receiptPDFHandler: failed to write receipt", "error", err, "token", token)
	}
}

func (s *Server) disposeHandler(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	s.dropEngine(token)
	writeJSONResponse(w, http.StatusOK, models.Success(nil))
}

// pollInterval returns the status poll cadence for a state. The waiting
// screens poll, payment review at the slower cadence; the terminal and
// pre-submission screens do not poll at all.
func pollInterval(state models.WorkflowState) (time.Duration, bool) {
	switch state {
	case models.StateComplete, models.StateEscrow:
		return poll.StatusInterval, true
	case models.StatePaymentReview:
		return poll.PaymentInterval, true
	}
	return 0, false
}

// maintainPolling keeps the engine's backend status poll aligned with its
// state, stopping it outright when the state no longer polls.
func (s *Server) maintainPolling(e *wizard.Engine) {
	interval, ok := pollInterval(e.State())
	if !ok {
		e.Registry().Stop(statusConcern)
		return
	}
	e.Registry().Start(context.Background(), statusConcern, interval, func(ctx context.Context) {
		s.pollStatus(ctx, e, interval)
	})
}

// pollStatus runs one status tick: fetch, reconcile, then re-evaluate the
// poller itself, so a tick that drives the engine to a terminal state also
// retires the poll instead of hitting the backend forever. Registry.Stop
// waits for the running tick to return, so the re-evaluation must happen
// from a separate goroutine.
func (s *Server) pollStatus(ctx context.Context, e *wizard.Engine, interval time.Duration) {
	rec, err := s.client.GetVerification(ctx, e.Token())
	if err != nil {
		slog.Warn("Server.pollStatus: status poll failed", "error", err, "token", e.Token())
		return
	}
	e.Reconcile(ctx, rec)
	if next, ok := pollInterval(e.State()); !ok || next != interval {
		go s.maintainPolling(e)
	}
}
