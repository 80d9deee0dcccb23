// Package api provides the HTTP surface and main server logic for the
// verification portal.
//
// It exposes the recipient session endpoints (screen, fields, transitions,
// captures, submission) and the admin console endpoints, wiring the wizard,
// session, backend, and admin modules together.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/meridian-ops/ioops-portal/internal/admin"
	"github.com/meridian-ops/ioops-portal/internal/archive"
	"github.com/meridian-ops/ioops-portal/internal/backend"
	"github.com/meridian-ops/ioops-portal/internal/events"
	"github.com/meridian-ops/ioops-portal/internal/models"
	"github.com/meridian-ops/ioops-portal/internal/render"
	"github.com/meridian-ops/ioops-portal/internal/session"
	"github.com/meridian-ops/ioops-portal/internal/wizard"
)

// Default server configuration.
const (
	DefaultAddr          = ":8080"
	DefaultSessionMaxAge = 7 * 24 * time.Hour
)

// Opts holds server configuration.
type Opts struct {
	Addr          string
	SweepSchedule string
	SessionMaxAge time.Duration
	Archive       *archive.Archive
	EventsURL     string
}

// Option configures server construction.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithSweepSchedule sets the cron expression for the session sweeper.
func WithSweepSchedule(schedule string) Option {
	return func(o *Opts) { o.SweepSchedule = schedule }
}

// WithSessionMaxAge sets how long idle session snapshots survive.
func WithSessionMaxAge(d time.Duration) Option {
	return func(o *Opts) { o.SessionMaxAge = d }
}

// WithArchive enables the captured-media audit archive.
func WithArchive(a *archive.Archive) Option {
	return func(o *Opts) { o.Archive = a }
}

// WithEventsURL enables the backend WebSocket event subscription.
func WithEventsURL(url string) Option {
	return func(o *Opts) { o.EventsURL = url }
}

// Server hosts the portal HTTP API. It owns one wizard engine per active
// session token and one admin controller shared by console requests.
type Server struct {
	store    session.Store
	client   *backend.Client
	renderer wizard.Renderer
	archive  *archive.Archive
	adminCtl *admin.Controller

	mu      sync.Mutex
	engines map[string]*wizard.Engine
}

// NewServer wires a server from its collaborators.
func NewServer(store session.Store, client *backend.Client, renderer wizard.Renderer, arch *archive.Archive) *Server {
	return &Server{
		store:    store,
		client:   client,
		renderer: renderer,
		archive:  arch,
		adminCtl: admin.NewController(client),
		engines:  make(map[string]*wizard.Engine),
	}
}

// Run builds the store, backend client, and server from the given option sets
// and serves until the listener fails.
func Run(storeOpts []session.Option, backendOpts []backend.Option, apiOpts []Option) error {
	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.SessionMaxAge <= 0 {
		cfg.SessionMaxAge = DefaultSessionMaxAge
	}

	store, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to build session store: %w", err)
	}
	defer store.Close()

	client, err := backend.NewClient(backendOpts...)
	if err != nil {
		return fmt.Errorf("failed to build backend client: %w", err)
	}

	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		return fmt.Errorf("failed to build renderer: %w", err)
	}

	sweeper, err := session.NewSweeper(store, cfg.SweepSchedule, cfg.SessionMaxAge)
	if err != nil {
		return fmt.Errorf("failed to start session sweeper: %w", err)
	}
	defer sweeper.Stop()

	s := NewServer(store, client, renderer, cfg.Archive)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var sub *events.Subscriber
	if cfg.EventsURL != "" {
		sub = events.NewSubscriber(events.WithURL(cfg.EventsURL), events.WithAdminRoom())
		s.wireEvents(sub)
		go sub.Run(ctx)
	}
	s.adminCtl.Start(ctx, sub)
	defer s.adminCtl.Stop()

	slog.Info("portal API running", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, s.Handler())
}

// buildStore selects a store backend from the options: Redis when an address
// is set, Postgres for postgres DSNs, SQLite for file DSNs, memory otherwise.
func buildStore(opts []session.Option) (session.Store, error) {
	var cfg session.Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	switch {
	case cfg.RedisAddr != "":
		return session.NewRedisStore(opts...)
	case strings.HasPrefix(cfg.DSN, "postgres://") || strings.Contains(cfg.DSN, "host="):
		return session.NewPostgresStore(opts...)
	case cfg.DSN != "":
		return session.NewSQLiteStore(opts...)
	default:
		slog.Debug("no session DSN provided, using in-memory store")
		return session.NewInMemoryStore(), nil
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /session/{token}/screen", s.screenHandler)
	mux.HandleFunc("POST /session/{token}/fields", s.fieldsHandler)
	mux.HandleFunc("POST /session/{token}/transition", s.transitionHandler)
	mux.HandleFunc("POST /session/{token}/capture/{slot}", s.captureHandler)
	mux.HandleFunc("POST /session/{token}/submit", s.submitHandler)
	mux.HandleFunc("POST /session/{token}/escrow-confirm", s.escrowConfirmHandler)
	mux.HandleFunc("POST /session/{token}/receipt", s.receiptHandler)
	mux.HandleFunc("GET /session/{token}/status", s.statusHandler)
	mux.HandleFunc("POST /session/{token}/code", s.codeHandler)
	mux.HandleFunc("GET /session/{token}/receipt-pdf", s.receiptPDFHandler)
	mux.HandleFunc("DELETE /session/{token}", s.disposeHandler)

	mux.HandleFunc("GET /admin/verifications", s.adminListHandler)
	mux.HandleFunc("POST /admin/verifications/{id}/select", s.adminSelectHandler)
	mux.HandleFunc("POST /admin/verifications/{id}/approve-document", s.adminApproveDocumentHandler)
	mux.HandleFunc("POST /admin/verifications/{id}/reject-document", s.adminRejectDocumentHandler)
	mux.HandleFunc("POST /admin/verifications/{id}/approve-payment", s.adminApprovePaymentHandler)
	mux.HandleFunc("POST /admin/verifications/{id}/reject-payment", s.adminRejectPaymentHandler)
	mux.HandleFunc("GET /admin/shipments", s.adminShipmentsHandler)
	mux.HandleFunc("POST /admin/shipments/{trackingID}/generate-verification", s.adminGenerateVerificationHandler)
	mux.HandleFunc("POST /admin/email/open", s.adminEmailOpenHandler)
	mux.HandleFunc("POST /admin/email/company", s.adminEmailCompanyHandler)
	mux.HandleFunc("POST /admin/email/template", s.adminEmailTemplateHandler)
	mux.HandleFunc("POST /admin/email/send", s.adminEmailSendHandler)
	mux.HandleFunc("GET /admin/shipment-agent/templates", s.adminConfigTemplatesHandler)
	mux.HandleFunc("POST /admin/shipment-agent/preview", s.adminPreviewTimelineHandler)
	mux.HandleFunc("POST /admin/shipment-agent/create", s.adminCreateTimelineHandler)

	return mux
}

// wireEvents registers session-facing event handlers: any decision event for a
// token with a live engine triggers a fetch-and-reconcile. The handlers are
// idempotent, so replayed events converge to the same state.
func (s *Server) wireEvents(sub *events.Subscriber) {
	reconcile := func(ev models.Event) {
		if ev.Token == "" {
			return
		}
		s.mu.Lock()
		e, ok := s.engines[ev.Token]
		s.mu.Unlock()
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), backend.DefaultTimeout)
		defer cancel()
		rec, err := s.client.GetVerification(ctx, ev.Token)
		if err != nil {
			slog.Warn("Server.wireEvents: reconcile fetch failed", "error", err, "token", ev.Token)
			return
		}
		e.Reconcile(ctx, rec)
	}
	for _, kind := range []models.EventKind{
		models.EventDocumentApproved, models.EventDocumentRejected,
		models.EventAllDocumentsApproved, models.EventPaymentApproved,
		models.EventPaymentRejected,
	} {
		sub.On(kind, reconcile)
	}
}

// engine returns the wizard engine for a token, creating and resuming it on
// first use.
func (s *Server) engine(ctx context.Context, token string) *wizard.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.engines[token]; ok {
		return e
	}
	e := wizard.New(ctx, token,
		wizard.WithStore(s.store),
		wizard.WithRenderer(s.renderer),
	)
	s.engines[token] = e
	slog.Debug("Server.engine: engine created", "token", token)
	return e
}

// dropEngine disposes a token's engine and forgets it.
func (s *Server) dropEngine(token string) {
	s.mu.Lock()
	e, ok := s.engines[token]
	delete(s.engines, token)
	s.mu.Unlock()
	if ok {
		e.Dispose()
	}
}
