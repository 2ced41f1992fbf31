/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard frontend

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

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
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetEmployee)
				r.Post("/exit", h.ExitEmployee)

				r.Route("/attendance", func(r chi.Router) {
					r.Get("/", h.GetAttendance)
					r.Get("/session", h.GetSession)
					r.Post("/check-in", h.CheckIn)
					r.Post("/check-out", h.CheckOut)
				})

				r.Route("/leave", func(r chi.Router) {
					r.Get("/balances", h.GetLeaveBalances)
					r.Get("/requests", h.GetLeaveRequests)
					r.Post("/requests", h.ApplyLeave)
					r.Post("/requests/{requestID}/cancel", h.CancelLeave)
					r.Post("/requests/{requestID}/approve", h.ApproveLeave)
					r.Post("/requests/{requestID}/reject", h.RejectLeave)
				})

				r.Route("/settlement", func(r chi.Router) {
					r.Get("/", h.GetSettlement)
					r.Post("/", h.DraftSettlement)
					r.Post("/finalize", h.FinalizeSettlement)
				})
			})
		})
	})

	return r
}
