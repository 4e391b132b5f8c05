// Package metrics provides Prometheus metrics for the conversion
// service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics.
type Metrics struct {
	ConversionsTotal    *prometheus.CounterVec
	ConversionsFailed   prometheus.Counter
	ConversionDuration  prometheus.Histogram
	ReadinessScore      prometheus.Histogram
	ValidationErrors    prometheus.Histogram
	FusionConflicts     prometheus.Counter
	DocumentsFused      prometheus.Histogram
	CodingMatches       *prometheus.CounterVec
	OutboxPending       prometheus.Gauge
	EventsPublished     prometheus.Counter
	CircuitBreakerState *prometheus.GaugeVec
}

// New creates and registers all metrics.
func New() *Metrics {
	m := &Metrics{
		ConversionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "conversions_total",
			Help: "Total conversions by document type and use case",
		}, []string{"doc_type", "use_case"}),
		ConversionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "conversions_failed_total",
			Help: "Total failed conversions",
		}),
		ConversionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "conversion_duration_seconds",
			Help:    "End-to-end conversion duration",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		ReadinessScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bundle_readiness_score",
			Help:    "NHCX readiness score of produced bundles",
			Buckets: []float64{0, 25, 50, 75, 90, 95, 100},
		}),
		ValidationErrors: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bundle_validation_errors",
			Help:    "Validation error count per bundle",
			Buckets: []float64{0, 1, 2, 5, 10, 20},
		}),
		FusionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fusion_conflicts_total",
			Help: "Total field conflicts resolved during multi-document fusion",
		}),
		DocumentsFused: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "documents_per_fusion",
			Help:    "Documents per multi-document request",
			Buckets: []float64{1, 2, 3, 4, 5},
		}),
		CodingMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coding_matches_total",
			Help: "Terminology lookups by system and match method",
		}, []string{"system", "method"}),
		OutboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_pending_entries",
			Help: "Pending outbox entries",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "conversion_events_published_total",
			Help: "Total conversion events published to the broker",
		}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"name"}),
	}

	prometheus.MustRegister(
		m.ConversionsTotal,
		m.ConversionsFailed,
		m.ConversionDuration,
		m.ReadinessScore,
		m.ValidationErrors,
		m.FusionConflicts,
		m.DocumentsFused,
		m.CodingMatches,
		m.OutboxPending,
		m.EventsPublished,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
