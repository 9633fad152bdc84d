// Tillsight - E-Commerce Business Intelligence Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tillsight

// Package metrics defines the Prometheus collectors exported on /metrics.
//
// Collectors are registered on the default registry at package init via
// promauto. Label cardinality is bounded: endpoints are chi route patterns,
// never raw paths, and error labels are coarse classes.
package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"query", "error_type"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Model cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_cache_hits_total",
			Help: "Total number of model cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_cache_misses_total",
			Help: "Total number of model cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_cache_evictions_total",
			Help: "Total number of expired model cache entries removed",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_cache_entries",
			Help: "Number of entries currently held in the model cache",
		},
		[]string{"cache_type"},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 = closed, 1 = half-open, 2 = open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests passing through a circuit breaker by result (success, failure, rejected)",
		},
		[]string{"name", "result"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Analytics engine metrics
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Time spent inside an analytics engine, excluding database access",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"engine"},
	)

	AnalysisOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_outcomes_total",
			Help: "Analytics engine runs by outcome (success, empty, fallback, error)",
		},
		[]string{"engine", "outcome"},
	)

	ModelTrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "model_training_duration_seconds",
			Help:    "Duration of model training runs",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	ModelLastTrained = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_last_trained_timestamp_seconds",
			Help: "Unix time of the last successful training run",
		},
		[]string{"model"},
	)

	// Import metrics
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_rows_total",
			Help: "Rows read by the PostgreSQL importer by table and result (imported, skipped, error)",
		},
		[]string{"table", "result"},
	)

	ImportBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "import_batch_duration_seconds",
			Help:    "Duration of one read-and-write import batch",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordDBQuery records the duration and, on failure, the error class of a named query.
func RecordDBQuery(query string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(query, classifyError(err)).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAnalysis records one engine run.
func RecordAnalysis(engine, outcome string, duration time.Duration) {
	AnalysisDuration.WithLabelValues(engine).Observe(duration.Seconds())
	AnalysisOutcomes.WithLabelValues(engine, outcome).Inc()
}

// RecordTraining records a training run. The last-trained gauge only moves on success.
func RecordTraining(model string, duration time.Duration, err error) {
	ModelTrainingDuration.WithLabelValues(model).Observe(duration.Seconds())
	if err == nil {
		ModelLastTrained.WithLabelValues(model).Set(float64(time.Now().Unix()))
	}
}

// classifyError maps an error to a low-cardinality label.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "circuit breaker"), strings.Contains(msg, "too many requests"):
		return "circuit_open"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "database is closed"):
		return "connection"
	case strings.Contains(msg, "scan"):
		return "scan"
	case strings.Contains(msg, "syntax"), strings.Contains(msg, "binder error"), strings.Contains(msg, "catalog error"):
		return "sql"
	default:
		return "other"
	}
}
