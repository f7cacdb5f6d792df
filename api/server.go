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
  /api/customers/*   Accounts, reading submission, bill history
  /api/bills/*       Payment capture
  /api/tariffs/*     Active tariff lookup
  /api/admin/*       Ledger queries, reading overrides, tariffs, purge

SEE ALSO:
  - handlers.go: Handler implementations
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
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Customer routes
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.RegisterCustomer)
			r.Get("/{id}", h.GetCustomer)
			r.Post("/{id}/bills", h.SubmitReading)
			r.Get("/{id}/bills", h.ListCustomerBills)
		})

		// Bill routes
		r.Route("/bills", func(r chi.Router) {
			r.Post("/{id}/pay", h.PayBill)
		})

		// Tariff routes
		r.Route("/tariffs", func(r chi.Router) {
			r.Get("/current", h.GetCurrentTariff)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Get("/bills", h.ListAllBills)
			r.Patch("/customers/{id}/reading", h.UpdatePreviousReading)
			r.Delete("/customers", h.DeleteCustomers)
			r.Get("/tariffs", h.ListTariffs)
			r.Post("/tariffs", h.SetTariff)
		})
	})

	// Landing page for anyone poking at the root
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Water Billing API</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Water Billing API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/customers">/api/customers</a> - List customers</li>
<li><a href="/api/tariffs/current">/api/tariffs/current</a> - Active tariff</li>
<li><a href="/api/admin/bills">/api/admin/bills</a> - Full bill ledger</li>
</ul>
</body>
</html>`))
	})

	return r
}
