// Package poll provides cancellable fixed-interval pollers keyed by concern.
//
// The portal reconciles out-of-band backend progress (document review, payment
// approval, code redemption) by polling on a fixed interval with no backoff.
// The registry structurally enforces at most one active poller per concern:
// starting a poll for a concern cancels any prior poll for that concern first.
package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Poll intervals observed for the portal's concerns.
const (
	// StatusInterval is the poll cadence while documents await review.
	StatusInterval = 5 * time.Second
	// PaymentInterval is the poll cadence while a payment action is pending.
	PaymentInterval = 10 * time.Second
	// AdminRefreshInterval is the admin console list auto-refresh cadence.
	AdminRefreshInterval = 30 * time.Second
)

type poller struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Registry owns the active pollers for one controller or engine instance.
// The zero value is not usable; create one with NewRegistry.
type Registry struct {
	mu      sync.Mutex
	pollers map[string]*poller
}

// NewRegistry creates an empty poller registry.
func NewRegistry() *Registry {
	return &Registry{pollers: make(map[string]*poller)}
}

// Start begins polling fn on a fixed interval under the given concern,
// cancelling any poller already running for that concern. The first tick
// fires after one full interval. fn runs until Stop, StopAll, or parent
// context cancellation.
func (r *Registry) Start(parent context.Context, concern string, interval time.Duration, fn func(context.Context)) {
	r.Stop(concern)

	ctx, cancel := context.WithCancel(parent)
	p := &poller{cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	r.pollers[concern] = p
	r.mu.Unlock()

	slog.Debug("Registry.Start: poller started", "concern", concern, "interval", interval)
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
}

// Stop cancels the poller for the given concern, if any, and waits for its
// loop to exit. Stopping an unknown concern is a no-op.
func (r *Registry) Stop(concern string) {
	r.mu.Lock()
	p, ok := r.pollers[concern]
	if ok {
		delete(r.pollers, concern)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	p.cancel()
	<-p.done
	slog.Debug("Registry.Stop: poller stopped", "concern", concern)
}

// StopAll cancels every active poller. Safe to call repeatedly.
func (r *Registry) StopAll() {
	r.mu.Lock()
	pollers := r.pollers
	r.pollers = make(map[string]*poller)
	r.mu.Unlock()

	for concern, p := range pollers {
		p.cancel()
		<-p.done
		slog.Debug("Registry.StopAll: poller stopped", "concern", concern)
	}
}

// ActiveCount returns the number of currently registered pollers.
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pollers)
}

// Active reports whether a poller is registered for the given concern.
func (r *Registry) Active(concern string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pollers[concern]
	return ok
}
