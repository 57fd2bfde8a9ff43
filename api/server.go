/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/budget/*      Snapshot upload and inspection
  /api/rates         Rate-policy document upload
  /api/transfers/*   Queue management, preview, single-step apply
  /api/project       Batch projection of the queue
  /api/export/*      CSV downloads
  /api/personnel/*   Personnel planning
  /api/scenarios/*   Demo scenario presets

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/rebudget: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Budget snapshot routes
		r.Route("/budget", func(r chi.Router) {
			r.Post("/", h.UploadBudget)
			r.Get("/", h.GetBudget)
			r.Post("/encumbrances", h.UploadEncumbrances)
		})

		// Rate policy routes
		r.Post("/rates", h.UploadRates)
		r.Get("/rates", h.GetRates)

		// Transfer routes
		r.Route("/transfers", func(r chi.Router) {
			r.Get("/", h.ListTransfers)
			r.Post("/", h.EnqueueTransfer)
			r.Delete("/{id}", h.RemoveTransfer)
			r.Post("/preview", h.PreviewTransfer)
			r.Post("/apply", h.ApplyTransfer)
		})

		// Batch projection
		r.Post("/project", h.RunProjection)

		// Export routes
		r.Get("/export/audit", h.ExportAudit)
		r.Get("/export/budget", h.ExportBudget)

		// Personnel planning
		r.Post("/personnel/projection", h.PersonnelProjection)

		// Demo scenarios
		r.Get("/scenarios", h.ListScenarios)
		r.Post("/scenarios/load", h.LoadScenario)

		r.Get("/health", h.Health)
	})

	return r
}
