// Package metrics exposes Prometheus counters for the ingestion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline counters. A nil *Metrics is a valid no-op.
type Metrics struct {
	ChunksProcessed    prometheus.Counter
	ChunksSkipped      prometheus.Counter
	ReportsStored      prometheus.Counter
	ValidationFailures prometheus.Counter
	EventPublishErrors prometheus.Counter
}

// NewMetrics registers the counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ChunksProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "vulnrecord_chunks_processed_total",
			Help: "Total number of report chunks turned into findings",
		}),
		ChunksSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "vulnrecord_chunks_skipped_total",
			Help: "Total number of report chunks skipped after an extraction error",
		}),
		ReportsStored: f.NewCounter(prometheus.CounterOpts{
			Name: "vulnrecord_reports_stored_total",
			Help: "Total number of reports persisted",
		}),
		ValidationFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "vulnrecord_validation_failures_total",
			Help: "Total number of reports rejected by schema validation",
		}),
		EventPublishErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "vulnrecord_event_publish_errors_total",
			Help: "Total number of report events that failed to publish",
		}),
	}
}

func (m *Metrics) IncChunksProcessed() {
	if m != nil {
		m.ChunksProcessed.Inc()
	}
}

func (m *Metrics) IncChunksSkipped() {
	if m != nil {
		m.ChunksSkipped.Inc()
	}
}

func (m *Metrics) IncReportsStored() {
	if m != nil {
		m.ReportsStored.Inc()
	}
}

func (m *Metrics) IncValidationFailures() {
	if m != nil {
		m.ValidationFailures.Inc()
	}
}

func (m *Metrics) IncEventPublishErrors() {
	if m != nil {
		m.EventPublishErrors.Inc()
	}
}
