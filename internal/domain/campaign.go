package domain

// CampaignStatus enumerates campaign lifecycle values stored in estado_campana.
type CampaignStatus string

const (
	CampaignPersuading CampaignStatus = "persuadiendo"
	CampaignCompleted  CampaignStatus = "completada"
)

// ProspectStatus enumerates prospect pipeline milestones stored in estado_prospecto.
type ProspectStatus string

const (
	ProspectQualified   ProspectStatus = "analizado_calificado"
	ProspectReadyToSend ProspectStatus = "listo_para_enviar"
)

// MaxBatchSize caps how many prospects a single cycle may draft.
const MaxBatchSize = 5

// Campaign groups prospects and talking points pursued together.
type Campaign struct {
	ID     string
	Status CampaignStatus
}

// TalkingPoint is a reusable pitch keyed to a customer pain point.
type TalkingPoint struct {
	ID         string
	CampaignID string
	PainPoint  string
	Pitch      string
}

// Prospect is a business targeted for outreach.
type Prospect struct {
	ID           string
	CampaignID   string
	BusinessName string
	Status       ProspectStatus
	Draft        string
}

// Qualified reports whether the prospect is waiting for a draft.
func (p Prospect) Qualified() bool {
	return p.Status == ProspectQualified
}

// DraftRequest carries what the text service needs to write one outreach email.
type DraftRequest struct {
	BusinessName string
	Pitch        string
}
