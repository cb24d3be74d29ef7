package ports

import (
	"context"
	"time"

	"persuader/internal/domain"
)

// Record is a single row returned by a RecordStore as an open attribute map.
type Record map[string]any

// Filter selects records by column equality.
type Filter map[string]any

// RecordStore is the generic query-and-update store backing all entities.
type RecordStore interface {
	// Query returns records of table matching every filter column.
	// A limit of zero or less means no limit.
	Query(ctx context.Context, table string, filter Filter, limit int) ([]Record, error)
	// Update applies patch to the record whose keyColumn equals key.
	Update(ctx context.Context, table, keyColumn string, key any, patch Record) error
}

// PipelineRepository is the typed view over campaigns, talking points and prospects.
type PipelineRepository interface {
	ActiveCampaign(ctx context.Context) (domain.Campaign, bool, error)
	TalkingPoints(ctx context.Context, campaignID string) ([]domain.TalkingPoint, error)
	QualifiedProspects(ctx context.Context, campaignID string, limit int) ([]domain.Prospect, error)
	CompleteCampaign(ctx context.Context, campaignID string) error
	MarkReadyToSend(ctx context.Context, prospectID, draft string) error
}

// TextCompleter sends a single natural-language prompt to a generative-text backend.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Scheduler drives job repeatedly and blocks until ctx is done.
type Scheduler interface {
	Start(ctx context.Context, job func(context.Context, time.Time)) error
}

// Metrics records cycle and draft outcomes.
type Metrics interface {
	ObserveCycle(outcome string)
	ObserveDraft(success bool)
	ObserveCampaignCompleted()
}
