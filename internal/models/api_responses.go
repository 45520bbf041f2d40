// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package models

import (
	"time"
)

// APIResponse is the envelope every HTTP endpoint returns.
//
// Status is "success" (see Data) or "error" (see Error).
//
//	{
//	  "status": "success",
//	  "data": [{"item_name": "Milk", "score": 0.82, ...}],
//	  "metadata": {"timestamp": "2026-01-21T09:00:00Z", "query_time_ms": 4}
//	}
//
//	{
//	  "status": "error",
//	  "error": {"code": "VALIDATION_ERROR", "message": "user_id is required",
//	            "details": {"field": "user_id"}},
//	  "metadata": {"timestamp": "2026-01-21T09:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries timing for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Count       *int      `json:"count,omitempty"`
}

// APIError is the structured error of a failed request.
//
// Codes in use: VALIDATION_ERROR, NOT_FOUND, CONFLICT, DATABASE_ERROR,
// SERVICE_UNAVAILABLE, RATE_LIMIT_EXCEEDED, INTERNAL_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status        string            `json:"status"` // "healthy" or "degraded"
	Version       string            `json:"version"`
	Database      bool              `json:"database_connected"`
	NATS          *bool             `json:"nats_connected,omitempty"`
	WALPending    *int64            `json:"wal_pending,omitempty"`
	Uptime        float64           `json:"uptime_seconds"`
	Components    map[string]string `json:"components,omitempty"`
	LastRebuildAt *time.Time        `json:"last_rebuild_at,omitempty"`
}
