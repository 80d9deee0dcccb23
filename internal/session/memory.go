package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/meridian-ops/ioops-portal/internal/models"
)

// InMemoryStore keeps snapshots in process memory. Used for tests and as the
// default backend when no DSN is configured.
type InMemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]models.Snapshot
}

// NewInMemoryStore creates an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{snaps: make(map[string]models.Snapshot)}
}

func (s *InMemoryStore) Save(_ context.Context, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.Token] = snap
	return nil
}

func (s *InMemoryStore) Load(_ context.Context, token string) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[token]
	if !ok {
		return nil, nil
	}
	if !snap.Matches(token) {
		slog.Warn("InMemoryStore Load: snapshot token mismatch, discarding", "token", token)
		return nil, nil
	}
	out := snap
	return &out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, token)
	return nil
}

func (s *InMemoryStore) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, snap := range s.snaps {
		if snap.Timestamp.Before(cutoff) {
			delete(s.snaps, token)
			removed++
		}
	}
	return removed, nil
}

func (s *InMemoryStore) Close() error { return nil }
