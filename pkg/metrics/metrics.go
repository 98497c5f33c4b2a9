// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// EngineCallDuration tracks knowledge engine call duration.
	EngineCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_call_duration_seconds",
			Help:    "Knowledge engine call duration in seconds",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"operation", "status"},
	)

	// EngineCallsInFlight tracks in-flight knowledge engine calls.
	EngineCallsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_calls_in_flight",
			Help: "Number of in-flight knowledge engine calls",
		},
	)

	// RewriteCallDuration tracks query rewrite completion duration.
	RewriteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rewrite_call_duration_seconds",
			Help:    "Query rewrite completion duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10},
		},
		[]string{"provider", "status"},
	)

	// ConversationsTotal tracks total conversations created.
	ConversationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_total",
			Help: "Total conversations created",
		},
	)

	// TurnsTotal tracks completed chat turns.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total chat turns by outcome",
		},
		[]string{"status"},
	)

	// DocumentsUploaded tracks uploaded documents.
	DocumentsUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "documents_uploaded_total",
			Help: "Total documents uploaded",
		},
	)

	// IngestTotal tracks document ingestion attempts by outcome.
	IngestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_ingest_total",
			Help: "Total document ingestion attempts by outcome",
		},
		[]string{"status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordEngineCall records metrics for a knowledge engine call.
func RecordEngineCall(operation, status string, duration float64) {
	EngineCallDuration.WithLabelValues(operation, status).Observe(duration)
}
