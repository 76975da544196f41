package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/industrylens/industrylens/internal/server/handlers"
)

func (s *Server) registerRoutes() {
	hm := s.opts.Health
	s.router.Get("/health", hm.HealthHandler)
	s.router.Get("/health/live", hm.LivenessHandler)
	s.router.Get("/health/ready", hm.ReadinessHandler)

	s.router.Get("/version", handlers.VersionHandler)
	s.router.Get("/metrics", MetricsHandler)

	if api := s.opts.API; api != nil {
		s.router.Route("/v1", func(r chi.Router) {
			r.Post("/overview", api.Overview)
			r.Post("/explain/{kind}", api.Explain)
			r.Get("/models", api.Models)
			r.Get("/prompts", api.Prompts)
		})
	}
}
