/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:      Request logging
  2. Recoverer:   Panic recovery (500 instead of crash)
  3. RequestID:   Unique ID per request for tracing
  4. CORS:        Cross-origin requests for frontend
  5. RequireAuth: Token validation on everything under /api except login

ROUTE GROUPS:
  /api/auth/*          Login and token verification
  /api/areas/*         Organizational areas
  /api/employees/*     Employee management
  /api/convocations/*  Convocation lifecycle and attendance
  /api/attendance/*    Roster-centric attendance views
  /api/penalties/*     Penalty ledger
  /api/users           User listing (admin)
  /api/dashboard       Aggregate counters
  /api/reports/*       JSON report exports

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Authentication middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

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
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Login is the only unauthenticated endpoint.
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Get("/auth/verify", h.Verify)

			// Area routes
			r.Route("/areas", func(r chi.Router) {
				r.Get("/", h.ListAreas)
				r.Post("/", h.CreateArea)
				r.Put("/{id}", h.UpdateArea)
				r.Delete("/{id}", h.DeleteArea)
			})

			// Employee routes
			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Post("/", h.CreateEmployee)
				r.Put("/{id}", h.UpdateEmployee)
				r.Delete("/{id}", h.DeactivateEmployee)
			})

			// Convocation routes
			r.Route("/convocations", func(r chi.Router) {
				r.Get("/", h.ListConvocations)
				r.Post("/", h.CreateConvocation)
				r.Get("/{id}", h.GetConvocation)
				r.Post("/{id}/send", h.SendConvocation)
				r.Patch("/{id}/attendances", h.RecordAttendances)
				r.Delete("/{id}", h.DeleteConvocation)
			})

			// Attendance routes (roster-centric view of the same data)
			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", h.GetAttendance)
				r.Patch("/{convocationID}", h.RecordAttendancesByPath)
			})

			// Penalty routes
			r.Route("/penalties", func(r chi.Router) {
				r.Get("/", h.ListPenalties)
				r.Post("/manual", h.CreateManualPenalty)
				r.Get("/employee/{id}", h.ListEmployeePenalties)
				r.Patch("/{id}", h.PatchPenalty)
			})

			// Admin routes
			r.With(h.RequireRole("ADMIN")).Get("/users", h.ListUsers)

			// Dashboard and reports
			r.Get("/dashboard", h.Dashboard)
			r.Route("/reports", func(r chi.Router) {
				r.Get("/convocations", h.ConvocationReport)
				r.Get("/employees", h.EmployeeReport)
			})
		})
	})

	// Health endpoint for load balancers and smoke tests.
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "convocation-engine",
			"status":  "ok",
		})
	})

	return r
}
