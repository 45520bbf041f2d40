// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

/*
Package middleware provides HTTP instrumentation shared by the API router.

PrometheusMetrics records http_requests_total, request latency and
in-flight requests, labeled by chi route pattern. Requests slower than
DefaultSlowRequestThreshold are logged with the request's correlation ids.

	r := chi.NewRouter()
	r.Use(middleware.PrometheusMetrics)

Request ids, CORS, rate limiting and timeouts come from chi, go-chi/cors
and go-chi/httprate and are wired in package api.
*/
package middleware
