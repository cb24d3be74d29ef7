package storage

import "fmt"

// Column names shared by every backend.
const (
	colCampaignID     = "id"
	colCampaignStatus = "estado_campana"

	colOwnerCampaign = "campana_id"
	colPainPoint     = "dolor_clave"
	colPitch         = "argumentario_solucion"

	colProspectID     = "prospecto_id"
	colBusinessName   = "nombre_negocio"
	colProspectStatus = "estado_prospecto"
	colDraft          = "borrador_mensaje"
)

// Schema names the tables holding each entity.
type Schema struct {
	Campaigns     string
	TalkingPoints string
	Prospects     string
}

// DefaultSchema returns the table names used by the upstream pipeline.
func DefaultSchema() Schema {
	return Schema{
		Campaigns:     "campanas",
		TalkingPoints: "argumentarios_venta",
		Prospects:     "prospectos",
	}
}

func (s Schema) withDefaults() Schema {
	def := DefaultSchema()
	if s.Campaigns == "" {
		s.Campaigns = def.Campaigns
	}
	if s.TalkingPoints == "" {
		s.TalkingPoints = def.TalkingPoints
	}
	if s.Prospects == "" {
		s.Prospects = def.Prospects
	}
	return s
}

// DDL returns CREATE TABLE statements accepted by both Postgres and SQLite.
func (s Schema) DDL() []string {
	s = s.withDefaults()
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			%s INTEGER PRIMARY KEY,
			%s TEXT NOT NULL
		)`, s.Campaigns, colCampaignID, colCampaignStatus),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			%s INTEGER NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL
		)`, s.TalkingPoints, colOwnerCampaign, colPainPoint, colPitch),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			%s INTEGER PRIMARY KEY,
			%s INTEGER NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT
		)`, s.Prospects, colProspectID, colOwnerCampaign, colBusinessName, colProspectStatus, colDraft),
	}
}
