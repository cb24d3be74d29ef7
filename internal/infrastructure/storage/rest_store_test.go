package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"persuader/internal/ports"
)

func TestRESTStoreQuery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/rest/v1/prospectos" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("apikey") != "secret" || r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing credentials: %v", r.Header)
		}

		q := r.URL.Query()
		want := map[string]string{
			"select":           "*",
			"campana_id":       "eq.1",
			"estado_prospecto": "eq.analizado_calificado",
			"limit":            "5",
		}
		for key, val := range want {
			if got := q.Get(key); got != val {
				t.Errorf("query %s = %q, want %q", key, got, val)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"prospecto_id": 42, "nombre_negocio": "Acme", "borrador_mensaje": null}]`)
	}))
	t.Cleanup(srv.Close)

	store := NewRESTStore(srv.URL+"/", "secret", srv.Client())
	records, err := store.Query(context.Background(), "prospectos", ports.Filter{
		"campana_id":       "1",
		"estado_prospecto": "analizado_calificado",
	}, 5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if formatValue(rec["prospecto_id"]) != "42" || formatValue(rec["nombre_negocio"]) != "Acme" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if got := formatValue(rec["borrador_mensaje"]); got != "" {
		t.Fatalf("null draft rendered as %q", got)
	}
}

func TestRESTStoreUpdate(t *testing.T) {
	t.Parallel()

	var patch map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.URL.Query().Get("prospecto_id"); got != "eq.42" {
			t.Errorf("prospecto_id filter = %q", got)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation" {
			t.Errorf("Prefer = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			t.Errorf("decode patch: %v", err)
		}

		_, _ = io.WriteString(w, `[{"prospecto_id": 42}]`)
	}))
	t.Cleanup(srv.Close)

	store := NewRESTStore(srv.URL, "secret", srv.Client())
	err := store.Update(context.Background(), "prospectos", "prospecto_id", "42", ports.Record{
		"borrador_mensaje": "DRAFT",
		"estado_prospecto": "listo_para_enviar",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if patch["borrador_mensaje"] != "DRAFT" || patch["estado_prospecto"] != "listo_para_enviar" {
		t.Fatalf("unexpected patch: %v", patch)
	}
}

func TestRESTStoreUpdateNoMatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	store := NewRESTStore(srv.URL, "secret", srv.Client())
	err := store.Update(context.Background(), "campanas", "id", "9", ports.Record{"estado_campana": "completada"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRESTStoreSurfacesHTTPErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"JWT expired"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	store := NewRESTStore(srv.URL, "secret", srv.Client())
	_, err := store.Query(context.Background(), "campanas", ports.Filter{"estado_campana": "persuadiendo"}, 1)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "JWT expired") {
		t.Fatalf("error lacks status or body: %v", err)
	}
}

func TestRESTStoreRequiresKey(t *testing.T) {
	t.Parallel()

	store := NewRESTStore("https://example.supabase.co", "", nil)
	if _, err := store.Query(context.Background(), "campanas", nil, 1); err == nil {
		t.Fatal("expected error without key")
	}
}
