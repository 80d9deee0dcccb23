package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-ops/ioops-portal/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL bounds how long a Redis snapshot survives without being
// rewritten. Every Save refreshes the TTL.
const DefaultSessionTTL = 24 * time.Hour

const redisKeyPrefix = "ioops:session:"

// RedisStore persists session snapshots in Redis with a per-key TTL. Expiry is
// handled by Redis itself, so DeleteExpired is a no-op for this backend.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(opts ...Option) (*RedisStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.RedisAddr == "" {
		slog.Error("RedisStore address not set")
		return nil, fmt.Errorf("session store redis address not set")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err := client.Ping(context.Background()).Err(); err != nil {
		slog.Error("RedisStore ping failed", "error", err, "addr", cfg.RedisAddr)
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	slog.Debug("RedisStore ready", "addr", cfg.RedisAddr, "ttl", ttl)
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Save(ctx context.Context, snap models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+snap.Token, payload, s.ttl).Err(); err != nil {
		slog.Error("RedisStore Save failed", "error", err, "token", snap.Token)
		return fmt.Errorf("failed to save session %s: %w", snap.Token, err)
	}
	slog.Debug("RedisStore Save succeeded", "token", snap.Token, "state", snap.State)
	return nil
}

func (s *RedisStore) Load(ctx context.Context, token string) (*models.Snapshot, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		slog.Warn("RedisStore Load failed, starting fresh", "error", err, "token", token)
		return nil, nil
	}

	var snap models.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		slog.Warn("RedisStore snapshot corrupt, starting fresh", "error", err, "token", token)
		return nil, nil
	}
	if !snap.Matches(token) {
		slog.Warn("RedisStore snapshot token mismatch, discarding", "token", token, "snapshot_token", snap.Token)
		return nil, nil
	}
	return &snap, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", token, err)
	}
	return nil
}

// DeleteExpired is a no-op for Redis; keys carry their own TTL.
func (s *RedisStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
