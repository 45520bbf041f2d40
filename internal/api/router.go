// Pantry - Household Grocery Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/pantry/internal/middleware"
)

// Router sets up HTTP routes using the Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil cfg uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, cfg *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(cfg),
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// Applied to all routes, in order
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.With(APISecurityHeaders()).Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		// Rebuilds may outlive the request timeout.
		r.Post("/recommendations/rebuild", h.Rebuild)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(handlerTimeout))

			r.Get("/recommendations", h.Recommendations)
			r.Get("/recommendations/similar-users", h.SimilarUsers)
			r.Get("/recommendations/collaborative", h.Collaborative)
			r.Post("/recommendations/add-to-list", h.AddToList)

			r.Post("/purchases", h.RecordPurchase)

			r.Post("/lists", h.CreateList)
			r.Get("/lists/{id}", h.GetList)
			r.Patch("/lists/{id}", h.UpdateList)
			r.Post("/lists/{id}/items", h.AddListItem)
			r.Post("/lists/{id}/items/{itemId}/purchase", h.PurchaseListItem)
		})
	})

	return r
}
