// Package session provides the persistence bridge for wizard sessions.
//
// A snapshot of {state, data, timestamp} is written under the session token on
// every successful transition and read once at engine construction to resume a
// prior session. Backends: in-memory, SQLite, PostgreSQL, and Redis.
//
// Bridge semantics: Load returns nil (not an error) when a snapshot is absent,
// malformed, or keyed by a different token. Corrupt persisted state degrades
// to a fresh session, logged but never surfaced to the recipient.
package session

import (
	"context"
	"time"

	"github.com/meridian-ops/ioops-portal/internal/models"
)

// Store is the session persistence bridge contract.
type Store interface {
	// Save writes a snapshot under its session token, replacing any prior one.
	Save(ctx context.Context, snap models.Snapshot) error

	// Load reads the snapshot for the given token. Absent, malformed, or
	// token-mismatched snapshots yield (nil, nil).
	Load(ctx context.Context, token string) (*models.Snapshot, error)

	// Delete removes the snapshot for the given token, if any.
	Delete(ctx context.Context, token string) error

	// DeleteExpired purges snapshots last written before the cutoff and
	// returns the number removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)

	// Close releases backend resources.
	Close() error
}

// Opts holds configuration for session store backends.
type Opts struct {
	DSN       string
	RedisAddr string
	RedisDB   int
	TTL       time.Duration
}

// Option configures session store construction.
type Option func(*Opts)

// WithDSN sets the database DSN (SQLite file path or Postgres URL).
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithRedisAddr sets the Redis address for the Redis backend.
func WithRedisAddr(addr string) Option {
	return func(o *Opts) { o.RedisAddr = addr }
}

// WithRedisDB selects the Redis logical database.
func WithRedisDB(db int) Option {
	return func(o *Opts) { o.RedisDB = db }
}

// WithTTL bounds how long a snapshot survives without being rewritten.
func WithTTL(ttl time.Duration) Option {
	return func(o *Opts) { o.TTL = ttl }
}
