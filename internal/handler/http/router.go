// Package http wires the storefront's HTTP surface: routing, middleware, and
// the per-resource handlers.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BothSann/kdmv-sub002/internal/auth"
	"github.com/BothSann/kdmv-sub002/pkg/health"
	"github.com/BothSann/kdmv-sub002/pkg/middleware"
)

// RouterConfig carries everything the router needs.
type RouterConfig struct {
	ServiceName    string
	Logger         *slog.Logger
	TokenValidator middleware.TokenValidator
	Health         *health.Handler
	CORS           middleware.CORSConfig
	RequestTimeout time.Duration

	// Pprof mounts /debug/pprof/* behind an IP allowlist when enabled.
	PprofEnabled      bool
	PprofAllowedCIDRs []string

	Addresses *AddressHandler
	Cart      *CartHandler
	Orders    *OrderHandler
	Payments  *PaymentHandler
}

// NewRouter assembles the storefront routes with the full middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	r.Use(chimiddleware.Timeout(timeout))

	r.Get("/healthz", cfg.Health.LivenessHandler())
	r.Get("/readyz", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, cfg.Logger)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenValidator))

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", cfg.Addresses.List)
			r.Post("/", cfg.Addresses.Create)
			r.Get("/{addressID}", cfg.Addresses.Get)
			r.Put("/{addressID}", cfg.Addresses.Update)
			r.Delete("/{addressID}", cfg.Addresses.Delete)
			r.Post("/{addressID}/default", cfg.Addresses.SetDefault)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cfg.Cart.Get)
			r.Delete("/", cfg.Cart.Clear)
			r.Post("/items", cfg.Cart.AddItem)
			r.Put("/items/{variantID}", cfg.Cart.UpdateItem)
			r.Delete("/items/{variantID}", cfg.Cart.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", cfg.Orders.List)
			r.Get("/{orderID}", cfg.Orders.Get)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/{transactionID}", cfg.Payments.Get)
			r.Post("/{transactionID}/confirm", cfg.Payments.Confirm)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleStaff, auth.RoleAdmin))

			r.Patch("/orders/{orderID}/status", cfg.Orders.UpdateStatus)
		})
	})

	return r
}
