package storage

import (
	"context"
	"fmt"

	"persuader/internal/domain"
	"persuader/internal/ports"
)

// Repository maps generic store records onto pipeline entities.
type Repository struct {
	store  ports.RecordStore
	schema Schema
}

var _ ports.PipelineRepository = (*Repository)(nil)

// NewRepository wraps a record store with the given table names.
func NewRepository(store ports.RecordStore, schema Schema) *Repository {
	return &Repository{store: store, schema: schema.withDefaults()}
}

// ActiveCampaign returns the first campaign in the persuading state.
func (r *Repository) ActiveCampaign(ctx context.Context) (domain.Campaign, bool, error) {
	records, err := r.store.Query(ctx, r.schema.Campaigns, ports.Filter{
		colCampaignStatus: string(domain.CampaignPersuading),
	}, 1)
	if err != nil {
		return domain.Campaign{}, false, err
	}
	if len(records) == 0 {
		return domain.Campaign{}, false, nil
	}

	rec := records[0]
	id := formatValue(rec[colCampaignID])
	if id == "" {
		return domain.Campaign{}, false, fmt.Errorf("campaign record without %s", colCampaignID)
	}
	return domain.Campaign{
		ID:     id,
		Status: domain.CampaignStatus(formatValue(rec[colCampaignStatus])),
	}, true, nil
}

// TalkingPoints returns every talking point of the campaign in store order.
func (r *Repository) TalkingPoints(ctx context.Context, campaignID string) ([]domain.TalkingPoint, error) {
	records, err := r.store.Query(ctx, r.schema.TalkingPoints, ports.Filter{
		colOwnerCampaign: campaignID,
	}, 0)
	if err != nil {
		return nil, err
	}

	points := make([]domain.TalkingPoint, 0, len(records))
	for _, rec := range records {
		points = append(points, domain.TalkingPoint{
			ID:         formatValue(rec["id"]),
			CampaignID: formatValue(rec[colOwnerCampaign]),
			PainPoint:  formatValue(rec[colPainPoint]),
			Pitch:      formatValue(rec[colPitch]),
		})
	}
	return points, nil
}

// QualifiedProspects returns up to limit prospects awaiting a draft.
func (r *Repository) QualifiedProspects(ctx context.Context, campaignID string, limit int) ([]domain.Prospect, error) {
	records, err := r.store.Query(ctx, r.schema.Prospects, ports.Filter{
		colOwnerCampaign:  campaignID,
		colProspectStatus: string(domain.ProspectQualified),
	}, limit)
	if err != nil {
		return nil, err
	}

	prospects := make([]domain.Prospect, 0, len(records))
	for _, rec := range records {
		id := formatValue(rec[colProspectID])
		if id == "" {
			return nil, fmt.Errorf("prospect record without %s", colProspectID)
		}
		prospects = append(prospects, domain.Prospect{
			ID:           id,
			CampaignID:   formatValue(rec[colOwnerCampaign]),
			BusinessName: formatValue(rec[colBusinessName]),
			Status:       domain.ProspectStatus(formatValue(rec[colProspectStatus])),
			Draft:        formatValue(rec[colDraft]),
		})
	}
	return prospects, nil
}

// CompleteCampaign moves the campaign to its terminal state.
func (r *Repository) CompleteCampaign(ctx context.Context, campaignID string) error {
	return r.store.Update(ctx, r.schema.Campaigns, colCampaignID, campaignID, ports.Record{
		colCampaignStatus: string(domain.CampaignCompleted),
	})
}

// MarkReadyToSend stores the draft and advances the prospect in one update.
func (r *Repository) MarkReadyToSend(ctx context.Context, prospectID, draft string) error {
	return r.store.Update(ctx, r.schema.Prospects, colProspectID, prospectID, ports.Record{
		colDraft:          draft,
		colProspectStatus: string(domain.ProspectReadyToSend),
	})
}
