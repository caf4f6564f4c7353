// Package metrics provides Prometheus metrics collection for the
// transaction risk service. It defines counters, gauges, and histograms
// for prediction throughput, scoring latency, risk score distribution,
// and general service health, exposed via the Prometheus endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the risk service.
type Metrics struct {
	// Prediction metrics
	PredictionsTotal   prometheus.Counter     // Total predictions served
	PredictionFailures prometheus.Counter     // Scoring-call failures
	PredictionLatency  prometheus.Histogram   // End-to-end prediction latency in seconds
	RiskScores         prometheus.Histogram   // Distribution of fraud risk scores
	RiskBands          *prometheus.CounterVec // Predictions per risk band
	FraudFlagged       prometheus.Counter     // Predictions flagged fraudulent

	// Explanation metrics
	ExplanationFailures prometheus.Counter // Degraded explanation attempts

	// Request metrics
	RequestsTotal    *prometheus.CounterVec // HTTP requests by endpoint
	ValidationErrors prometheus.Counter     // Rejected caller inputs

	// System metrics
	ModelLoadFailures prometheus.Counter // Failed model load attempts
	ErrorsTotal       prometheus.Counter // Total errors encountered
}

// New creates and registers all metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for
// testing, to keep metric collection isolated from the global registry).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of fraud predictions served",
		}),
		PredictionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of failed scoring calls",
		}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "End-to-end prediction latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		RiskScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "risk_scores",
			Help:    "Distribution of fraud risk scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		RiskBands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_bands_total",
			Help: "Predictions per risk band",
		}, []string{"band"}),
		FraudFlagged: factory.NewCounter(prometheus.CounterOpts{
			Name: "fraud_flagged_total",
			Help: "Total number of predictions flagged fraudulent",
		}),
		ExplanationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "explanation_failures_total",
			Help: "Total number of degraded explanation attempts",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "requests_total",
			Help: "HTTP requests by endpoint",
		}, []string{"endpoint"}),
		ValidationErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "validation_errors_total",
			Help: "Total number of rejected caller inputs",
		}),
		ModelLoadFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "model_load_failures_total",
			Help: "Total number of failed model load attempts",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}
