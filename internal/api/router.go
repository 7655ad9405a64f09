// Convive - Social Dining Group Formation Service
// Copyright 2026 A. Frantzeskakis (afrantzeskakis)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/afrantzeskakis/convive

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig selects the middleware knobs the router needs from the
// server configuration.
type RouterConfig struct {
	CORSOrigins        []string
	RateLimitPerMinute int
}

// NewRouter builds the chi router with the full middleware stack and
// all routes mounted.
func NewRouter(cfg RouterConfig, h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(RequestIDWithLogging())
	r.Use(RequestLogger())
	r.Use(chimiddleware.Recoverer)
	r.Use(CORSMiddleware(cfg.CORSOrigins))
	r.Use(RateLimitMiddleware(cfg.RateLimitPerMinute))
	r.Use(MetricsMiddleware())

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/health", func(r chi.Router) {
			r.Get("/live", h.handleLivez)
			r.Get("/ready", h.handleReadyz)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Post("/", h.handleCreateMatchRun)
			r.Route("/runs", func(r chi.Router) {
				r.Get("/", h.handleListRuns)
				r.Get("/{runID}", h.handleGetRun)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.handleListUsers)
			r.Route("/{userID}", func(r chi.Router) {
				r.Put("/", h.handleUpsertUser)
				r.Get("/", h.handleGetUser)
				r.Delete("/", h.handleDeleteUser)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		WriteNotFound(w, req, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		WriteError(w, req, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	return r
}
