package storage_test

import (
	"context"
	"slices"
	"strings"
	"testing"

	"persuader/internal/infrastructure/storage"
	"persuader/internal/usecase"
)

type pitchRecorder struct {
	pitches []string
}

func (p *pitchRecorder) Complete(ctx context.Context, prompt string) (string, error) {
	for _, pitch := range []string{"pitch A", "pitch B"} {
		if strings.Contains(prompt, pitch) {
			p.pitches = append(p.pitches, pitch)
		}
	}
	return "DRAFT", nil
}

func TestCycleAgainstSQLite(t *testing.T) {
	db, err := storage.OpenSQL("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := storage.NewSQLStore(db, "sqlite")
	ctx := context.Background()
	if err := store.EnsureSchema(ctx, storage.DefaultSchema()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	for _, stmt := range []string{
		`INSERT INTO campanas (id, estado_campana) VALUES (1, 'persuadiendo')`,
		`INSERT INTO argumentarios_venta (id, campana_id, dolor_clave, argumentario_solucion) VALUES
			(1, 1, 'pain A', 'pitch A'),
			(2, 1, 'pain B', 'pitch B')`,
		`INSERT INTO prospectos (prospecto_id, campana_id, nombre_negocio, estado_prospecto) VALUES
			(1, 1, 'Acme', 'analizado_calificado'),
			(2, 1, 'Beta', 'analizado_calificado'),
			(3, 1, 'Cigma', 'analizado_calificado')`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	completer := &pitchRecorder{}
	persuader := usecase.NewPersuader(usecase.PersuaderDeps{
		Repository: storage.NewRepository(store, storage.DefaultSchema()),
		Completer:  completer,
	})

	report, err := persuader.RunCycle(ctx)
	if err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	if report.Outcome != usecase.OutcomeDrafted {
		t.Fatalf("first cycle outcome = %s", report.Outcome)
	}
	if want := []string{"pitch A", "pitch B", "pitch A"}; !slices.Equal(completer.pitches, want) {
		t.Fatalf("pitches = %v, want %v", completer.pitches, want)
	}

	rows, err := db.Query(`SELECT nombre_negocio, estado_prospecto, borrador_mensaje FROM prospectos ORDER BY prospecto_id`)
	if err != nil {
		t.Fatalf("read prospects: %v", err)
	}

	var names []string
	for rows.Next() {
		var name, status, draft string
		if err := rows.Scan(&name, &status, &draft); err != nil {
			t.Fatalf("scan: %v", err)
		}
		if status != "listo_para_enviar" || draft != "DRAFT" {
			t.Errorf("%s: status=%q draft=%q", name, status, draft)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate rows: %v", err)
	}
	if err := rows.Close(); err != nil {
		t.Fatalf("close rows: %v", err)
	}
	if want := []string{"Acme", "Beta", "Cigma"}; !slices.Equal(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}

	report, err = persuader.RunCycle(ctx)
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if report.Outcome != usecase.OutcomeCampaignCompleted {
		t.Fatalf("second cycle outcome = %s", report.Outcome)
	}

	var status string
	if err := db.QueryRow(`SELECT estado_campana FROM campanas WHERE id = 1`).Scan(&status); err != nil {
		t.Fatalf("read campaign: %v", err)
	}
	if status != "completada" {
		t.Fatalf("campaign status = %q", status)
	}

	report, err = persuader.RunCycle(ctx)
	if err != nil {
		t.Fatalf("third cycle: %v", err)
	}
	if report.Outcome != usecase.OutcomeNoActiveCampaign {
		t.Fatalf("third cycle outcome = %s", report.Outcome)
	}
}
