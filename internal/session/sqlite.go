package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/meridian-ops/ioops-portal/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists session snapshots in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed session store. The DSN is a file path
// to the database file; the containing directory is created if absent.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("session store DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("SQLiteStore failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("SQLiteStore failed to open database", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLiteStore ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("SQLiteStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore ready", "dsn", cfg.DSN)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap models.Snapshot) error {
	dataJSON, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, state, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET state = excluded.state, data = excluded.data, updated_at = excluded.updated_at`,
		snap.Token, string(snap.State), string(dataJSON), snap.Timestamp)
	if err != nil {
		slog.Error("SQLiteStore Save failed", "error", err, "token", snap.Token)
		return fmt.Errorf("failed to save session %s: %w", snap.Token, err)
	}
	slog.Debug("SQLiteStore Save succeeded", "token", snap.Token, "state", snap.State)
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, token string) (*models.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token, state, data, updated_at FROM sessions WHERE token = ?`, token)
	return scanSnapshot(row, token)
}

func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", token, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
