// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/pantry/internal/models"
)

// Health reports liveness and the state of the database, message bus and WAL.
// The service is "degraded" when the database or an enabled NATS connection is down.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbConnected := h.store != nil && h.store.Ping(ctx) == nil

	status := "healthy"
	components := map[string]string{"database": "up"}
	if !dbConnected {
		status = "degraded"
		components["database"] = "down"
	}

	health := models.HealthStatus{
		Version:    h.version,
		Database:   dbConnected,
		Uptime:     time.Since(h.startTime).Seconds(),
		Components: components,
	}

	if h.natsStatus != nil {
		connected := h.natsStatus()
		health.NATS = &connected
		components["nats"] = "up"
		if !connected {
			status = "degraded"
			components["nats"] = "down"
		}
	}
	if h.walPending != nil {
		pending := h.walPending()
		health.WALPending = &pending
	}
	if h.engine != nil {
		if report := h.engine.LastRebuild(); report != nil {
			at := report.StartedAt
			health.LastRebuildAt = &at
		}
	}
	health.Status = status

	respondSuccess(w, http.StatusOK, health, start, -1)
}
