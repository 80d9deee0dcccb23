package session

import (
	"context"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/meridian-ops/ioops-portal/internal/models"
)

func sampleSnapshot(token string) models.Snapshot {
	return models.Snapshot{
		Token: token,
		State: models.StateDocumentInfo,
		Data: map[string]string{
			"full_name":     "Ada Lovelace",
			"date_of_birth": "1990-12-10",
		},
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
}

func TestInMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	snap := sampleSnapshot("tok_mem")
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Load(ctx, "tok_mem")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected snapshot, got nil")
	}
	if got.State != snap.State || got.Data["full_name"] != "Ada Lovelace" {
		t.Errorf("round trip mismatch: %+v", got)
	}

	// Load for a token that was never saved returns nothing, not an error.
	missing, err := s.Load(ctx, "tok_other")
	if err != nil || missing != nil {
		t.Errorf("expected (nil, nil) for absent token, got (%v, %v)", missing, err)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "sessions.db")
	s, err := NewSQLiteStore(WithDSN(dsn))
	if err != nil {
		t.Skipf("SQLite not available: %v", err)
	}
	defer s.Close()

	snap := sampleSnapshot("tok_sqlite")
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Load(ctx, "tok_sqlite")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.State != snap.State || got.Data["date_of_birth"] != "1990-12-10" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// Overwrite on re-save, not append.
	snap.State = models.StateCaptureBriefing
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = s.Load(ctx, "tok_sqlite")
	if got == nil || got.State != models.StateCaptureBriefing {
		t.Errorf("expected re-saved state, got %+v", got)
	}

	if err := s.Delete(ctx, "tok_sqlite"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = s.Load(ctx, "tok_sqlite")
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestSQLiteStoreCorruptDataDegradesToFresh(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "sessions.db")
	s, err := NewSQLiteStore(WithDSN(dsn))
	if err != nil {
		t.Skipf("SQLite not available: %v", err)
	}
	defer s.Close()

	if _, err := s.db.Exec(
		`INSERT INTO sessions (token, state, data, updated_at) VALUES (?, ?, ?, ?)`,
		"tok_bad", "PERSONAL_INFO", "{not json", time.Now()); err != nil {
		t.Fatalf("failed to seed corrupt row: %v", err)
	}

	got, err := s.Load(ctx, "tok_bad")
	if err != nil {
		t.Fatalf("corrupt data must not surface an error, got %v", err)
	}
	if got != nil {
		t.Error("corrupt data must degrade to a fresh session")
	}
}

func TestSQLiteStoreDeleteExpired(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "sessions.db")
	s, err := NewSQLiteStore(WithDSN(dsn))
	if err != nil {
		t.Skipf("SQLite not available: %v", err)
	}
	defer s.Close()

	old := sampleSnapshot("tok_old")
	old.Timestamp = time.Now().Add(-48 * time.Hour)
	fresh := sampleSnapshot("tok_fresh")
	for _, snap := range []models.Snapshot{old, fresh} {
		if err := s.Save(ctx, snap); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	removed, err := s.DeleteExpired(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if got, _ := s.Load(ctx, "tok_fresh"); got == nil {
		t.Error("fresh session must survive the sweep")
	}
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	connStr := getenvOrSkip(t, "DATABASE_URL")
	s, err := NewPostgresStore(WithDSN(connStr))
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	snap := sampleSnapshot("tok_pg")
	s.Delete(ctx, snap.Token)
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.Load(ctx, snap.Token)
	if err != nil || got == nil || got.State != snap.State {
		t.Fatalf("round trip mismatch: (%+v, %v)", got, err)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	addr := getenvOrSkip(t, "REDIS_ADDR")
	s, err := NewRedisStore(WithRedisAddr(addr))
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	snap := sampleSnapshot("tok_redis")
	s.Delete(ctx, snap.Token)
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.Load(ctx, snap.Token)
	if err != nil || got == nil || got.State != snap.State {
		t.Fatalf("round trip mismatch: (%+v, %v)", got, err)
	}
}

func getenvOrSkip(t *testing.T, key string) string {
	v := ""
	if val, ok := syscall.Getenv(key); ok {
		v = val
	}
	if v == "" {
		t.Skipf("env %s not set", key)
	}
	return v
}
