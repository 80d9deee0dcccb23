package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule purges expired sessions hourly.
const DefaultSweepSchedule = "0 * * * *"

// Sweeper periodically purges session snapshots that have not been written for
// longer than the configured maximum age.
type Sweeper struct {
	cron   *cron.Cron
	store  Store
	maxAge time.Duration
}

// NewSweeper creates and starts a cron-driven session sweeper. The schedule is
// a standard 5-field cron expression.
func NewSweeper(store Store, schedule string, maxAge time.Duration) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	s := &Sweeper{cron: c, store: store, maxAge: maxAge}
	if _, err := c.AddFunc(schedule, s.sweep); err != nil {
		return nil, err
	}
	c.Start()
	slog.Debug("session sweeper started", "schedule", schedule, "max_age", maxAge)
	return s, nil
}

func (s *Sweeper) sweep() {
	cutoff := time.Now().Add(-s.maxAge)
	removed, err := s.store.DeleteExpired(context.Background(), cutoff)
	if err != nil {
		slog.Error("session sweep failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("session sweep purged expired sessions", "removed", removed, "cutoff", cutoff)
	}
}

// Stop stops the sweeper and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
