package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"persuader/internal/ports"
)

// CycleRunner executes a single cycle. Persuader satisfies it.
type CycleRunner interface {
	RunCycle(ctx context.Context) (CycleReport, error)
}

// RetryPolicy bounds how often a failed cycle is retried before the loop waits
// for the next scheduled run.
type RetryPolicy struct {
	MaxTries     uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxElapsed   time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxTries:     3,
		InitialDelay: 30 * time.Second,
		MaxDelay:     5 * time.Minute,
		MaxElapsed:   15 * time.Minute,
	}
}

// withDefaults fills each unset field from DefaultRetryPolicy.
func (p RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxTries == 0 {
		p.MaxTries = def.MaxTries
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = def.InitialDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = def.MaxDelay
	}
	if p.MaxElapsed <= 0 {
		p.MaxElapsed = def.MaxElapsed
	}
	return p
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.MaxInterval = p.MaxDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	return b
}

// CycleError is the typed boundary error for a cycle that failed unexpectedly.
type CycleError struct {
	CycleID string
	Attempt int
	Panic   bool
	Err     error
}

func (e *CycleError) Error() string {
	if e.Panic {
		return fmt.Sprintf("cycle %s attempt %d panicked: %v", e.CycleID, e.Attempt, e.Err)
	}
	return fmt.Sprintf("cycle %s attempt %d: %v", e.CycleID, e.Attempt, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

// SupervisorDeps wires the cycle runner with its driver and retry policy.
type SupervisorDeps struct {
	Runner  CycleRunner
	Driver  ports.Scheduler
	Policy  RetryPolicy
	Metrics ports.Metrics
	Logger  *slog.Logger
}

// Supervisor keeps cycles running forever and absorbs their failures.
type Supervisor struct {
	runner  CycleRunner
	driver  ports.Scheduler
	policy  RetryPolicy
	metrics ports.Metrics
	logger  *slog.Logger
}

// NewSupervisor returns the supervised loop around a cycle runner.
func NewSupervisor(deps SupervisorDeps) *Supervisor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	policy := deps.Policy.withDefaults()

	return &Supervisor{
		runner:  deps.Runner,
		driver:  deps.Driver,
		policy:  policy,
		metrics: metrics,
		logger:  logger,
	}
}

// Run hands RunOnce to the driver and blocks until ctx is done.
func (s *Supervisor) Run(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return fmt.Errorf("supervisor is not configured")
	}

	job := func(ctx context.Context, trigger time.Time) {
		_, _ = s.RunOnce(ctx)
	}

	err := s.driver.Start(ctx, job)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// RunOnce runs one cycle behind the error boundary, retrying failures under the
// policy. The returned error is informational; it has already been logged.
func (s *Supervisor) RunOnce(ctx context.Context) (CycleReport, error) {
	cycleID := uuid.NewString()
	logger := s.logger.With("cycle_id", cycleID)
	logger.Info("cycle started")

	attempt := 0
	operation := func() (CycleReport, error) {
		attempt++
		report, err := s.attempt(ctx, cycleID, attempt)
		if err != nil && ctx.Err() != nil {
			return report, backoff.Permanent(err)
		}
		return report, err
	}

	report, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(s.policy.backOff()),
		backoff.WithMaxTries(s.policy.MaxTries),
		backoff.WithMaxElapsedTime(s.policy.MaxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("cycle failed, retrying", "error", err, "retry_in", next)
		}),
	)
	if err != nil {
		s.metrics.ObserveCycle(string(OutcomeFailed))
		logger.Error("cycle failed, waiting for next run", "attempts", attempt, "error", err)
		return report, err
	}

	s.metrics.ObserveCycle(string(report.Outcome))
	logger.Info("cycle completed", "outcome", report.Outcome, "attempts", attempt)
	return report, nil
}

func (s *Supervisor) attempt(ctx context.Context, cycleID string, n int) (report CycleReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CycleError{CycleID: cycleID, Attempt: n, Panic: true, Err: fmt.Errorf("%v", r)}
		}
	}()

	report, err = s.runner.RunCycle(ctx)
	if err != nil {
		return report, &CycleError{CycleID: cycleID, Attempt: n, Err: err}
	}
	return report, nil
}
