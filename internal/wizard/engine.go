package wizard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/meridian-ops/ioops-portal/internal/models"
	"github.com/meridian-ops/ioops-portal/internal/poll"
	"github.com/meridian-ops/ioops-portal/internal/session"
)

// Opts holds engine configuration.
type Opts struct {
	Store    session.Store
	Renderer Renderer
	Registry *poll.Registry
	OnRender func(Screen)
	Now      func() time.Time
}

// Option configures engine construction.
type Option func(*Opts)

// WithStore sets the session persistence bridge.
func WithStore(s session.Store) Option {
	return func(o *Opts) { o.Store = s }
}

// WithRenderer sets the screen renderer.
func WithRenderer(r Renderer) Option {
	return func(o *Opts) { o.Renderer = r }
}

// WithRegistry sets the poller registry the engine disposes with itself.
func WithRegistry(r *poll.Registry) Option {
	return func(o *Opts) { o.Registry = r }
}

// WithOnRender registers a callback invoked with every rendered screen.
func WithOnRender(fn func(Screen)) Option {
	return func(o *Opts) { o.OnRender = fn }
}

// WithNow overrides the engine clock.
func WithNow(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// Engine is the gated linear workflow engine for one verification session.
// One instance exists per session token; it exclusively owns the accumulated
// workflow data and the captured media slots.
type Engine struct {
	token    string
	store    session.Store
	renderer Renderer
	registry *poll.Registry
	onRender func(Screen)
	now      func() time.Time

	mu    sync.Mutex
	state models.WorkflowState
	data  map[string]string
	media map[string][]byte
	last  Screen
}

// New creates an engine for the given session token, resuming a persisted
// snapshot when one exists for this token. The resumed state is provisional
// until Reconcile is called with a fresh backend record.
func New(ctx context.Context, token string, opts ...Option) *Engine {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Store == nil {
		cfg.Store = session.NewInMemoryStore()
	}
	if cfg.Registry == nil {
		cfg.Registry = poll.NewRegistry()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	e := &Engine{
		token:    token,
		store:    cfg.Store,
		renderer: cfg.Renderer,
		registry: cfg.Registry,
		onRender: cfg.OnRender,
		now:      cfg.Now,
		state:    models.StateEntry,
		data:     make(map[string]string),
		media:    make(map[string][]byte),
	}

	snap, err := cfg.Store.Load(ctx, token)
	if err != nil {
		// Persistence failures degrade to a fresh session.
		slog.Warn("Engine.New: session load failed, starting fresh", "error", err, "token", token)
	} else if snap != nil && snap.State.Known() {
		e.state = snap.State
		for k, v := range snap.Data {
			e.data[k] = v
		}
		slog.Info("Engine.New: resumed persisted session", "token", token, "state", snap.State)
	}

	e.render()
	return e
}

// Token returns the session token this engine is bound to.
func (e *Engine) Token() string { return e.token }

// State returns the active workflow state.
func (e *Engine) State() models.WorkflowState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CanTransition reports whether the engine may move to target from its
// current state.
func (e *Engine) CanTransition(target models.WorkflowState) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return CanTransition(e.state, target)
}

// TransitionTo attempts a gated transition. A disallowed or unknown target is
// rejected: the state is unchanged, nothing is persisted, nothing re-renders,
// and the attempt is logged. A permitted transition commits the new state,
// persists a snapshot, and re-renders.
func (e *Engine) TransitionTo(ctx context.Context, target models.WorkflowState) bool {
	e.mu.Lock()
	if !CanTransition(e.state, target) {
		slog.Warn("Engine.TransitionTo: rejected transition", "token", e.token, "from", e.state, "to", target)
		e.mu.Unlock()
		return false
	}
	slog.Info("Engine.TransitionTo: state transition", "token", e.token, "from", e.state, "to", target)
	e.state = target
	e.mu.Unlock()

	e.persist(ctx)
	e.render()
	return true
}

// SetField records a submitted field value. Accumulated data is never cleared
// on backward navigation; returning to an earlier screen re-edits it in place.
func (e *Engine) SetField(key, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data[key] = value
}

// Field returns a previously submitted field value.
func (e *Engine) Field(key string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data[key]
}

// Data returns a copy of the accumulated workflow data.
func (e *Engine) Data() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]string, len(e.data))
	for k, v := range e.data {
		out[k] = v
	}
	return out
}

// Screen returns the most recently rendered screen.
func (e *Engine) Screen() Screen {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Registry exposes the engine's poller registry so screens can start and stop
// status polls that die with the engine.
func (e *Engine) Registry() *poll.Registry { return e.registry }

// Dispose stops all pollers, releases captured media, and forgets the last
// screen. The persisted snapshot survives for resume-after-reload.
func (e *Engine) Dispose() {
	e.registry.StopAll()
	e.mu.Lock()
	for slot := range e.media {
		delete(e.media, slot)
	}
	e.last = Screen{}
	e.mu.Unlock()
	slog.Debug("Engine.Dispose: engine disposed", "token", e.token)
}

func (e *Engine) persist(ctx context.Context) {
	e.mu.Lock()
	snap := models.Snapshot{
		Token:     e.token,
		State:     e.state,
		Data:      make(map[string]string, len(e.data)),
		Timestamp: e.now(),
	}
	for k, v := range e.data {
		snap.Data[k] = v
	}
	e.mu.Unlock()

	if err := e.store.Save(ctx, snap); err != nil {
		// Save failures are logged, never fatal to the wizard.
		slog.Error("Engine.persist: session save failed", "error", err, "token", e.token)
	}
}

func (e *Engine) render() {
	if e.renderer == nil {
		return
	}
	e.mu.Lock()
	state := e.state
	data := make(map[string]string, len(e.data))
	for k, v := range e.data {
		data[k] = v
	}
	e.mu.Unlock()

	screen := e.renderer.Render(state, data)

	e.mu.Lock()
	e.last = screen
	e.mu.Unlock()
	if e.onRender != nil {
		e.onRender(screen)
	}
}
