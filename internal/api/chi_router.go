// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sentryline/sentryline/internal/middleware"
)

// Router composes the handler with the middleware stack.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, chiMW *ChiMiddleware) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: chiMW,
	}
}

// SetupChi configures all HTTP routes using the Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.Compression)

	// Webhook ingestion. The manager retries on failure, so this endpoint
	// carries its own permissive rate limit rather than the API default.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitIngest())
		r.Use(middleware.PrometheusMetrics)
		r.Post("/webhook/wazuh", router.handler.Webhook)
	})

	// Health endpoints, permissively rate limited for monitoring tools.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// Query endpoints.
	r.Route("/api/v1/alerts", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/", router.handler.Alerts)
		r.Get("/stats", router.handler.AlertStats)
		r.With(router.chiMiddleware.RateLimitAdmin()).Post("/clear", router.handler.AlertsClear)
	})

	// Live feed.
	r.Route("/api/v1/ws", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitWebSocket())
		r.Get("/", router.handler.WebSocket)
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	return r
}
