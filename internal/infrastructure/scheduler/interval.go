package scheduler

import (
	"context"
	"fmt"
	"time"

	"persuader/internal/ports"
)

// DefaultInterval is the fixed sleep between cycles.
const DefaultInterval = time.Hour

// IntervalScheduler runs a job, sleeps a fixed interval, and repeats.
// The sleep starts after the job returns, so runs never overlap.
type IntervalScheduler struct {
	interval time.Duration
	now      func() time.Time
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler; a non-positive interval selects DefaultInterval.
func NewIntervalScheduler(interval time.Duration) *IntervalScheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &IntervalScheduler{interval: interval, now: time.Now}
}

// Interval reports the configured sleep.
func (s *IntervalScheduler) Interval() time.Duration {
	return s.interval
}

// Start runs job immediately and then after every interval until ctx is done.
func (s *IntervalScheduler) Start(ctx context.Context, job func(context.Context, time.Time)) error {
	if job == nil {
		return fmt.Errorf("scheduler job is nil")
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		job(ctx, s.now())

		if ctx.Err() != nil {
			return ctx.Err()
		}
		timer.Reset(s.interval)
	}
}
