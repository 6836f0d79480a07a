package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/notiva/notiva/internal/metrics"
	"github.com/notiva/notiva/internal/server/handlers"
)

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes() {
	// Health probes
	s.router.Get("/health", s.health.HealthHandler)
	s.router.Get("/health/live", s.health.LivenessHandler)
	s.router.Get("/health/ready", s.health.ReadinessHandler)

	// Version endpoint
	s.router.Get("/version", handlers.VersionHandler)

	// Prometheus exposition
	if s.opts.MetricsEnabled {
		s.router.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	if s.api == nil {
		return
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/search", s.api.SearchHandler)
		r.Post("/search", s.api.SearchHandler)
		r.Post("/views/{slug}", s.api.IncrementViewsHandler)
		r.Get("/views/{slug}", s.api.GetViewsHandler)
		r.Get("/views", s.api.TopViewsHandler)
		r.Get("/related/{id}", s.api.RelatedHandler)
		r.Post("/subscribe", s.api.SubscribeHandler)
		r.Get("/ratelimit/stats", s.api.RateLimitStatsHandler)
	})
}
