package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecorderExposesCounters(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.ObserveCycle("drafted")
	r.ObserveDraft(true)
	r.ObserveDraft(true)
	r.ObserveDraft(false)
	r.ObserveCampaignCompleted()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`persuader_cycles_total{outcome="drafted"} 1`,
		`persuader_drafts_total{result="success"} 2`,
		`persuader_drafts_total{result="failure"} 1`,
		`persuader_campaigns_completed_total 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}
