package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"persuader/internal/domain"
	"persuader/internal/ports"
)

// Outcome labels how a cycle ended.
type Outcome string

const (
	OutcomeNoActiveCampaign  Outcome = "no_active_campaign"
	OutcomeNoTalkingPoints   Outcome = "no_talking_points"
	OutcomeCampaignCompleted Outcome = "campaign_completed"
	OutcomeDrafted           Outcome = "drafted"
	OutcomeFailed            Outcome = "failed"
)

// CycleReport summarizes one selector + generator pass.
type CycleReport struct {
	CampaignID string
	Outcome    Outcome
	Attempted  int
	Drafted    []string
	Failed     []string
}

// PersuaderDeps wires driven adapters into the drafting cycle.
type PersuaderDeps struct {
	Repository ports.PipelineRepository
	Completer  ports.TextCompleter
	Metrics    ports.Metrics
	Logger     *slog.Logger

	// BatchSize is clamped to [1, domain.MaxBatchSize]; zero selects the maximum.
	BatchSize int

	// Pause is waited between consecutive prospects of a batch.
	Pause time.Duration
}

// Persuader advances qualified prospects of the active campaign to ready-to-send.
type Persuader struct {
	repository ports.PipelineRepository
	completer  ports.TextCompleter
	metrics    ports.Metrics
	logger     *slog.Logger
	batchSize  int
	pause      time.Duration
}

// NewPersuader constructs the cycle component.
func NewPersuader(deps PersuaderDeps) *Persuader {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	batch := deps.BatchSize
	if batch <= 0 || batch > domain.MaxBatchSize {
		batch = domain.MaxBatchSize
	}

	return &Persuader{
		repository: deps.Repository,
		completer:  deps.Completer,
		metrics:    metrics,
		logger:     logger,
		batchSize:  batch,
		pause:      deps.Pause,
	}
}

// RunCycle executes one full pass: select the active campaign, load its playbook
// and qualified prospects, then draft and persist each prospect in order.
// Expected "nothing to do" situations are reported through the Outcome, not as errors.
func (p *Persuader) RunCycle(ctx context.Context) (CycleReport, error) {
	if p.repository == nil || p.completer == nil {
		return CycleReport{}, fmt.Errorf("persuader is not configured")
	}

	campaign, found, err := p.repository.ActiveCampaign(ctx)
	if err != nil {
		return CycleReport{}, fmt.Errorf("find active campaign: %w", err)
	}
	if !found {
		p.logger.Info("no active campaign, nothing to do")
		return CycleReport{Outcome: OutcomeNoActiveCampaign}, nil
	}

	report := CycleReport{CampaignID: campaign.ID}
	logger := p.logger.With("campaign_id", campaign.ID)

	points, err := p.repository.TalkingPoints(ctx, campaign.ID)
	if err != nil {
		return report, fmt.Errorf("load talking points for campaign %s: %w", campaign.ID, err)
	}
	if len(points) == 0 {
		logger.Info("no sales playbook available, cycle aborted")
		report.Outcome = OutcomeNoTalkingPoints
		return report, nil
	}
	logger.Debug("talking points loaded", "count", len(points))

	prospects, err := p.repository.QualifiedProspects(ctx, campaign.ID, p.batchSize)
	if err != nil {
		return report, fmt.Errorf("load qualified prospects for campaign %s: %w", campaign.ID, err)
	}
	if len(prospects) > p.batchSize {
		prospects = prospects[:p.batchSize]
	}

	if len(prospects) == 0 {
		if err := p.repository.CompleteCampaign(ctx, campaign.ID); err != nil {
			return report, fmt.Errorf("complete campaign %s: %w", campaign.ID, err)
		}
		p.metrics.ObserveCampaignCompleted()
		logger.Info("no qualified prospects left, campaign completed")
		report.Outcome = OutcomeCampaignCompleted
		return report, nil
	}

	for i, prospect := range prospects {
		if i > 0 {
			if err := sleep(ctx, p.pause); err != nil {
				return report, err
			}
		}

		report.Attempted++
		point := points[RotationIndex(i, len(points))]
		if p.advance(ctx, logger, prospect, point) {
			report.Drafted = append(report.Drafted, prospect.ID)
		} else {
			report.Failed = append(report.Failed, prospect.ID)
		}
	}

	report.Outcome = OutcomeDrafted
	logger.Info("cycle finished",
		"attempted", report.Attempted,
		"drafted", len(report.Drafted),
		"failed", len(report.Failed))
	return report, nil
}

// advance drafts one prospect and commits it; failures are logged and absorbed.
func (p *Persuader) advance(ctx context.Context, logger *slog.Logger, prospect domain.Prospect, point domain.TalkingPoint) bool {
	logger = logger.With("prospect_id", prospect.ID, "business", prospect.BusinessName)
	logger.Info("drafting outreach", "pain_point", point.PainPoint)

	prompt := BuildDraftPrompt(domain.DraftRequest{
		BusinessName: prospect.BusinessName,
		Pitch:        point.Pitch,
	})

	draft, err := p.completer.Complete(ctx, prompt)
	if err == nil && draft == "" {
		err = fmt.Errorf("empty draft returned")
	}
	if err != nil {
		p.metrics.ObserveDraft(false)
		logger.Warn("draft generation failed, prospect skipped", "error", err)
		return false
	}

	if err := p.repository.MarkReadyToSend(ctx, prospect.ID, draft); err != nil {
		p.metrics.ObserveDraft(false)
		logger.Warn("persist draft failed, prospect skipped", "error", err)
		return false
	}

	p.metrics.ObserveDraft(true)
	logger.Info("prospect ready to send")
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type noopMetrics struct{}

func (noopMetrics) ObserveCycle(string)       {}
func (noopMetrics) ObserveDraft(bool)         {}
func (noopMetrics) ObserveCampaignCompleted() {}
