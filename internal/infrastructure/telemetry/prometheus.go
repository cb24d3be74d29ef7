// Package telemetry exposes worker metrics in Prometheus format.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"persuader/internal/ports"
)

// Recorder implements ports.Metrics with Prometheus counters on its own registry.
type Recorder struct {
	registry           *prometheus.Registry
	cyclesTotal        *prometheus.CounterVec
	draftsTotal        *prometheus.CounterVec
	campaignsCompleted prometheus.Counter
}

var _ ports.Metrics = (*Recorder)(nil)

// NewRecorder registers the worker metrics on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		cyclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "persuader_cycles_total",
				Help: "Total number of drafting cycles by outcome",
			},
			[]string{"outcome"},
		),
		draftsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "persuader_drafts_total",
				Help: "Total number of prospect drafts by result",
			},
			[]string{"result"},
		),
		campaignsCompleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "persuader_campaigns_completed_total",
				Help: "Total number of campaigns moved to completed",
			},
		),
	}
}

// ObserveCycle counts a finished cycle.
func (r *Recorder) ObserveCycle(outcome string) {
	r.cyclesTotal.WithLabelValues(outcome).Inc()
}

// ObserveDraft counts one prospect draft attempt.
func (r *Recorder) ObserveDraft(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	r.draftsTotal.WithLabelValues(result).Inc()
}

// ObserveCampaignCompleted counts a campaign completion transition.
func (r *Recorder) ObserveCampaignCompleted() {
	r.campaignsCompleted.Inc()
}

// Handler serves the registry in the exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}
