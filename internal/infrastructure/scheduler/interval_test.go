package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIntervalSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewIntervalScheduler(5 * time.Millisecond)
	runs := 0
	err := s.Start(ctx, func(ctx context.Context, _ time.Time) {
		runs++
		if runs == 3 {
			cancel()
		}
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if runs != 3 {
		t.Fatalf("expected 3 runs, got %d", runs)
	}
}

func TestIntervalSchedulerWaitsBetweenRuns(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := NewIntervalScheduler(time.Hour)
	runs := 0
	_ = s.Start(ctx, func(context.Context, time.Time) { runs++ })

	if runs != 1 {
		t.Fatalf("expected only the immediate run within the interval, got %d", runs)
	}
}

func TestNewIntervalSchedulerDefaults(t *testing.T) {
	t.Parallel()

	if got := NewIntervalScheduler(0).Interval(); got != DefaultInterval {
		t.Fatalf("expected default interval %s, got %s", DefaultInterval, got)
	}
}

func TestIntervalSchedulerRejectsNilJob(t *testing.T) {
	t.Parallel()

	if err := NewIntervalScheduler(time.Second).Start(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil job")
	}
}
