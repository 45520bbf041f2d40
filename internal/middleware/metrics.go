// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/pantry/internal/logging"
	"github.com/tomtom215/pantry/internal/metrics"
)

// DefaultSlowRequestThreshold is the latency above which requests are logged.
const DefaultSlowRequestThreshold = time.Second

// PrometheusMetrics records request count, latency and in-flight requests.
// Requests are labeled by chi route pattern ("/api/v1/lists/{id}") so ids do
// not create new series; unmatched requests are labeled "unmatched".
func PrometheusMetrics(next http.Handler) http.Handler {
	return SlowRequestMetrics(DefaultSlowRequestThreshold)(next)
}

// SlowRequestMetrics is PrometheusMetrics with a custom slow-request
// threshold. A non-positive threshold disables the slow-request log.
func SlowRequestMetrics(threshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metrics.TrackActiveRequest(true)
			defer metrics.TrackActiveRequest(false)

			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)
			route := routePattern(r)

			metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(status), duration)

			if threshold > 0 && duration > threshold {
				logging.Ctx(r.Context()).Warn().
					Str("method", r.Method).
					Str("route", route).
					Int("status", status).
					Dur("duration", duration).
					Msg("Slow request detected")
			}
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
