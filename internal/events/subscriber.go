// Package events consumes the backend's WebSocket event stream.
//
// Delivery is at-least-once: the subscriber reconnects on any failure and the
// backend may replay events, so registered handlers must be idempotent. The
// portal's handlers satisfy this by re-fetching and re-rendering, which is
// safe to repeat.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meridian-ops/ioops-portal/internal/models"
)

// DefaultReconnectDelay is the fixed wait between reconnect attempts.
const DefaultReconnectDelay = 5 * time.Second

// Handler consumes one event. Handlers run on the subscriber's read loop.
type Handler func(models.Event)

// Opts holds subscriber configuration.
type Opts struct {
	URL            string
	Join           models.JoinMessage
	ReconnectDelay time.Duration
	Dialer         *websocket.Dialer
}

// Option configures subscriber construction.
type Option func(*Opts)

// WithURL sets the WebSocket endpoint.
func WithURL(url string) Option {
	return func(o *Opts) { o.URL = url }
}

// WithVerificationRoom joins the room for one verification token.
func WithVerificationRoom(token string) Option {
	return func(o *Opts) { o.Join = models.JoinMessage{Action: models.JoinVerification, Token: token} }
}

// WithAdminRoom joins the shared admin room.
func WithAdminRoom() Option {
	return func(o *Opts) { o.Join = models.JoinMessage{Action: models.JoinAdmin} }
}

// WithReconnectDelay overrides the fixed reconnect delay.
func WithReconnectDelay(d time.Duration) Option {
	return func(o *Opts) { o.ReconnectDelay = d }
}

// WithDialer substitutes the websocket dialer (tests).
func WithDialer(d *websocket.Dialer) Option {
	return func(o *Opts) { o.Dialer = d }
}

// Subscriber maintains a reconnecting WebSocket subscription and dispatches
// typed events to registered handlers.
type Subscriber struct {
	url            string
	join           models.JoinMessage
	reconnectDelay time.Duration
	dialer         *websocket.Dialer

	mu       sync.RWMutex
	handlers map[models.EventKind][]Handler
}

// NewSubscriber creates a subscriber. Register handlers with On before Run.
func NewSubscriber(opts ...Option) *Subscriber {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	return &Subscriber{
		url:            cfg.URL,
		join:           cfg.Join,
		reconnectDelay: cfg.ReconnectDelay,
		dialer:         cfg.Dialer,
		handlers:       make(map[models.EventKind][]Handler),
	}
}

// On registers a handler for an event kind. Handlers must tolerate duplicate
// delivery of identical payloads.
func (s *Subscriber) On(kind models.EventKind, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[kind] = append(s.handlers[kind], h)
}

// Run connects, joins the configured room, and reads events until the context
// is cancelled, reconnecting after the fixed delay on any failure.
func (s *Subscriber) Run(ctx context.Context) {
	for {
		if err := s.connectAndRead(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("Subscriber.Run: connection lost, reconnecting",
				"error", err, "delay", s.reconnectDelay)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *Subscriber) connectAndRead(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	slog.Info("Subscriber.connectAndRead: connected", "url", s.url, "room", s.join.Action)

	if err := conn.WriteJSON(s.join); err != nil {
		return err
	}

	// Close the connection when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		s.Dispatch(payload)
	}
}

// Dispatch decodes one raw event payload and invokes matching handlers.
// Undecodable or unknown events are logged and dropped.
func (s *Subscriber) Dispatch(payload []byte) {
	var ev models.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		slog.Warn("Subscriber.Dispatch: undecodable event dropped", "error", err)
		return
	}
	if ev.Kind == "" {
		slog.Warn("Subscriber.Dispatch: event without kind dropped")
		return
	}

	s.mu.RLock()
	handlers := s.handlers[ev.Kind]
	s.mu.RUnlock()
	if len(handlers) == 0 {
		slog.Debug("Subscriber.Dispatch: no handlers for event", "kind", ev.Kind)
		return
	}
	for _, h := range handlers {
		h(ev)
	}
}
