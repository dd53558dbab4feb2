package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/report", func(r chi.Router) {
			r.Get("/summary", h.GetSummary)
			r.Get("/entries", h.GetEntries)
			r.Get("/lookup", h.GetLookup)
			r.Get("/export", h.ExportCSV)
			r.Post("/refresh", h.TriggerRefresh)
		})
	})

	return r
}
