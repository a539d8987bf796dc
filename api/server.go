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
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/budgets/*       Budget management and utilization
  /api/expenses/*      Expense recording
  /api/payments/*      Scheduled payments
  /api/categories/*    Category metadata
  /api/profile         Per-user settings
  /api/simulator/*     Scenario planning and what-if
  /api/demo/*          Demo dataset loading (dev only)
  /api/health          Liveness probe

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.
  Single-user deployments only.

SEE ALSO:
  - handlers.go: Handler implementations
  - simulator.go: Simulator handlers
  - cmd/budgetd/main.go: Server startup
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
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		// Budget routes
		r.Route("/budgets", func(r chi.Router) {
			r.Get("/current", h.GetCurrentBudget)
			r.Post("/", h.CreateBudget)
			r.Get("/{id}", h.GetBudget)
			r.Put("/{id}", h.UpdateBudget)
			r.Put("/{id}/allocations", h.ReplaceAllocations)
			r.Get("/{id}/daily-spending", h.GetDailySpending)
			r.Get("/{id}/risk", h.GetBudgetRisk)
		})

		// Expense routes
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.ListExpenses)
			r.Post("/", h.CreateExpense)
			r.Delete("/{id}", h.DeleteExpense)
		})

		// Payment routes
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.CreatePayment)
			r.Post("/{id}/paid", h.MarkPaymentPaid)
		})

		// Category routes
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Post("/", h.CreateCategory)
		})

		// Profile routes
		r.Route("/profile", func(r chi.Router) {
			r.Get("/", h.GetProfile)
			r.Put("/", h.PutProfile)
		})

		// Simulator routes
		r.Route("/simulator", func(r chi.Router) {
			r.Post("/plan", h.PlanScenarios)
			r.Post("/apply", h.ApplyScenario)
			r.Post("/what-if", h.WhatIf)
			r.Get("/recommendations", h.GetRecommendations)
		})

		// Demo routes
		r.Route("/demo", func(r chi.Router) {
			r.Get("/", h.ListDemoDatasets)
			r.Post("/load", h.LoadDemoDataset)
		})
	})

	return r
}
