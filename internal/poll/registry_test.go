package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartReplacesPollerForSameConcern(t *testing.T) {
	r := NewRegistry()
	defer r.StopAll()
	ctx := context.Background()

	var first, second atomic.Int32
	r.Start(ctx, "status", 10*time.Millisecond, func(context.Context) { first.Add(1) })
	r.Start(ctx, "status", 10*time.Millisecond, func(context.Context) { second.Add(1) })

	if got := r.ActiveCount(); got != 1 {
		t.Fatalf("expected exactly one active poller, got %d", got)
	}

	time.Sleep(60 * time.Millisecond)
	firstTicks := first.Load()
	if second.Load() == 0 {
		t.Error("replacement poller never ticked")
	}

	// The first poller must have been cancelled; its count stays frozen.
	time.Sleep(40 * time.Millisecond)
	if first.Load() != firstTicks {
		t.Error("original poller still ticking after replacement")
	}
}

func TestStopCancelsPolling(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	var ticks atomic.Int32
	r.Start(ctx, "status", 10*time.Millisecond, func(context.Context) { ticks.Add(1) })
	time.Sleep(35 * time.Millisecond)
	r.Stop("status")
	frozen := ticks.Load()

	time.Sleep(40 * time.Millisecond)
	if ticks.Load() != frozen {
		t.Error("poller ticked after Stop")
	}
	if r.Active("status") {
		t.Error("concern still registered after Stop")
	}

	// Stopping an unknown concern is a no-op.
	r.Stop("nonexistent")
}

func TestStopAll(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.Start(ctx, "status", 10*time.Millisecond, func(context.Context) {})
	r.Start(ctx, "admin-refresh", 10*time.Millisecond, func(context.Context) {})
	if r.ActiveCount() != 2 {
		t.Fatalf("expected 2 active pollers, got %d", r.ActiveCount())
	}

	r.StopAll()
	if r.ActiveCount() != 0 {
		t.Errorf("expected 0 active pollers after StopAll, got %d", r.ActiveCount())
	}
	r.StopAll()
}

func TestParentContextCancellationStopsTicks(t *testing.T) {
	r := NewRegistry()
	defer r.StopAll()
	ctx, cancel := context.WithCancel(context.Background())

	var ticks atomic.Int32
	r.Start(ctx, "status", 10*time.Millisecond, func(context.Context) { ticks.Add(1) })
	cancel()
	time.Sleep(20 * time.Millisecond)
	frozen := ticks.Load()
	time.Sleep(40 * time.Millisecond)
	if ticks.Load() != frozen {
		t.Error("poller ticked after parent context cancellation")
	}
}
