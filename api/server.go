/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard frontend

SECURITY NOTE:
  No authentication middleware. The engine runs behind the dashboard host's
  own auth boundary; all endpoints here are trusted-network only.
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/import", h.Import)
		r.Get("/imports", h.ListImports)

		r.Route("/servidores", func(r chi.Router) {
			r.Get("/", h.ListServidores)
			r.Get("/{matricula}", h.GetServidor)
			r.Get("/{matricula}/aposentadoria", h.GetAposentadoria)
		})

		r.Get("/stats", h.GetStats)
		r.Get("/agrupar", h.GroupBy)
		r.Get("/buscar", h.Search)

		r.Route("/lotacoes", func(r chi.Router) {
			r.Get("/duplicadas", h.ListDuplicates)
			r.Get("/regras", h.ListRules)
			r.Put("/regras", h.PutRule)
			r.Delete("/regras/{chave}", h.DeleteRule)
		})
	})

	return r
}
