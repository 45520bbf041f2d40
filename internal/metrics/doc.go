// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
are exposed at the /metrics endpoint:

	curl http://localhost:8080/metrics

# Available Metrics

HTTP Metrics:
  - http_requests_total: Total HTTP requests (counter)
    Labels: method, endpoint, status
  - http_request_duration_seconds: Request latency (histogram)
  - http_requests_in_flight: Active requests (gauge)

Database Metrics:
  - duckdb_query_duration_seconds, duckdb_query_errors_total
    Labels: operation, table
  - duckdb_transaction_retries_total

Recommendation Metrics:
  - pantry_purchases_recorded_total (outcome)
  - pantry_recommendation_query_duration_seconds (query)
  - pantry_recommendation_result_size
  - pantry_recommendations_supplemented_total
  - pantry_similarity_refresh_tasks_total (outcome), pantry_similarity_refresh_queue_depth
  - pantry_rebuild_groups_total (outcome), pantry_rebuild_duration_seconds

Ingest Metrics:
  - pantry_wal_pending_entries, pantry_wal_operations_total
  - pantry_nats_messages_total (outcome), pantry_nats_messages_published_total
  - circuit_breaker_state, circuit_breaker_state_transitions_total

# Usage

	start := time.Now()
	recs, err := db.ListRecords(ctx, userID)
	metrics.RecordDBQuery("select", "recommendations", time.Since(start), err)
*/
package metrics
