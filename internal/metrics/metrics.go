// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values shared by the counters below.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeSkipped   = "skipped"
	OutcomeDropped   = "dropped"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	DBTransactionRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_transaction_retries_total",
			Help: "Total number of retries after a DuckDB transaction conflict",
		},
		[]string{"operation"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Recommendation Metrics
	PurchasesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_purchases_recorded_total",
			Help: "Total number of purchases applied to recommendation records",
		},
		[]string{"outcome"}, // success, failure
	)

	RecommendationQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pantry_recommendation_query_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"}, // ranked, similar_users, collaborative
	)

	RecommendationResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pantry_recommendation_result_size",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
		},
	)

	RecommendationSupplemented = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pantry_recommendations_supplemented_total",
			Help: "Total number of responses supplemented with collaborative items",
		},
	)

	RefreshTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_similarity_refresh_tasks_total",
			Help: "Total number of item similarity refresh tasks by outcome",
		},
		[]string{"outcome"}, // submitted, dropped, success, failure
	)

	RefreshQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pantry_similarity_refresh_queue_depth",
			Help: "Number of similarity refresh tasks waiting in the queue",
		},
	)

	RebuildGroups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_rebuild_groups_total",
			Help: "Total number of (user, item) groups handled by batch rebuilds",
		},
		[]string{"outcome"}, // success, skipped, failure
	)

	RebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pantry_rebuild_duration_seconds",
			Help:    "Duration of batch rebuild runs in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 300},
		},
	)

	RebuildLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pantry_rebuild_last_success_timestamp",
			Help: "Unix timestamp of the last successful batch rebuild",
		},
	)

	// Ingest Metrics
	WALPendingEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pantry_wal_pending_entries",
			Help: "Number of purchase events journaled but not yet applied",
		},
	)

	WALOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_wal_operations_total",
			Help: "Total number of WAL operations",
		},
		[]string{"operation", "outcome"}, // write, confirm, replay
	)

	NATSMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pantry_nats_messages_total",
			Help: "Total number of purchase messages consumed from NATS by outcome",
		},
		[]string{"outcome"}, // applied, duplicate, journaled, poison, failed
	)

	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pantry_nats_messages_published_total",
			Help: "Total number of purchase messages published to NATS",
		},
	)

	NATSProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pantry_nats_processing_duration_seconds",
			Help:    "Time to process a consumed purchase message",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Dedupe cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"cache"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
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

// RecordPurchase records the outcome of applying one purchase.
func RecordPurchase(err error) {
	PurchasesRecorded.WithLabelValues(outcome(err)).Inc()
}

// RecordRecommendationQuery records a recommendation query and its result size.
func RecordRecommendationQuery(query string, duration time.Duration, results int) {
	RecommendationQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if query == "ranked" {
		RecommendationResultSize.Observe(float64(results))
	}
}

// RecordRefreshTask records a refresh queue event.
func RecordRefreshTask(event string) {
	RefreshTasks.WithLabelValues(event).Inc()
}

// RecordRebuild records a completed batch rebuild.
func RecordRebuild(duration time.Duration, succeeded, skipped, failed int) {
	RebuildDuration.Observe(duration.Seconds())
	RebuildGroups.WithLabelValues(OutcomeSuccess).Add(float64(succeeded))
	RebuildGroups.WithLabelValues(OutcomeSkipped).Add(float64(skipped))
	RebuildGroups.WithLabelValues(OutcomeFailure).Add(float64(failed))
	if failed == 0 {
		RebuildLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordWALOperation records a WAL write, confirm or replay.
func RecordWALOperation(operation string, err error) {
	WALOperations.WithLabelValues(operation, outcome(err)).Inc()
}

// RecordNATSMessage records the outcome of a consumed purchase message.
func RecordNATSMessage(result string, duration time.Duration) {
	NATSMessages.WithLabelValues(result).Inc()
	NATSProcessingDuration.Observe(duration.Seconds())
}

// RecordNATSPublish records a message being published to NATS
func RecordNATSPublish() {
	NATSMessagesPublished.Inc()
}

// RecordCircuitBreakerTransition records a breaker state change.
func RecordCircuitBreakerTransition(name, from, to string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
