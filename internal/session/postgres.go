package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/meridian-ops/ioops-portal/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists session snapshots in PostgreSQL for multi-instance
// deployments.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed session store from a connection
// string DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("session store DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("PostgresStore failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("PostgresStore ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("PostgresStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresStore ready")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Save(ctx context.Context, snap models.Snapshot) error {
	dataJSON, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, state, data, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE SET state = EXCLUDED.state, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		snap.Token, string(snap.State), string(dataJSON), snap.Timestamp)
	if err != nil {
		slog.Error("PostgresStore Save failed", "error", err, "token", snap.Token)
		return fmt.Errorf("failed to save session %s: %w", snap.Token, err)
	}
	slog.Debug("PostgresStore Save succeeded", "token", snap.Token, "state", snap.State)
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, token string) (*models.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token, state, data, updated_at FROM sessions WHERE token = $1`, token)
	return scanSnapshot(row, token)
}

func (s *PostgresStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", token, err)
	}
	return nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }
