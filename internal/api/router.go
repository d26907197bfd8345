package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Tunnel authenticates via single-use ticket in the query string;
		// browser WebSocket clients cannot send Authorization headers.
		r.Get("/machines/{id}/tunnel", s.handleTunnel)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Machine endpoints
			r.Route("/machines", func(r chi.Router) {
				r.Get("/", s.handleListMachines)
				r.Post("/", s.handleCreateMachine)
				r.With(s.adminMiddleware).Get("/admin", s.handleListSharedMachines)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetMachine)
					r.Put("/", s.handleUpdateMachine)
					r.Delete("/", s.handleDeleteMachine)
				})
			})

			// Admin-only endpoints
			r.Group(func(r chi.Router) {
				r.Use(s.adminMiddleware)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", s.handleListUsers)
					r.Put("/{id}", s.handleUpdateUser)
					r.Delete("/{id}", s.handleDeleteUser)
				})

				r.Get("/audit", s.handleListAudit)
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
