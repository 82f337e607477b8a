package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/fleetlink/fleetlink/internal/metrics"
	"github.com/fleetlink/fleetlink/internal/middleware"
)

// RouterConfig carries what both routers need besides their resource handler.
type RouterConfig struct {
	ServiceName        string
	Logger             *slog.Logger
	IsDevelopment      bool
	MaxRequestBodySize int64
	Metrics            metrics.Snapshotter
	Checks             []Check
}

// NewVehicleRouter builds the vehicle service router.
func NewVehicleRouter(cfg RouterConfig, vehicles *VehicleHandler) http.Handler {
	r := newBaseRouter(cfg)
	r.Route("/vehicles", vehicles.Routes)
	return r
}

// NewCustomerRouter builds the customer service router.
func NewCustomerRouter(cfg RouterConfig, customers *CustomerHandler) http.Handler {
	r := newBaseRouter(cfg)
	r.Route("/customers", customers.Routes)
	return r
}

// newBaseRouter configures middleware plus the health, metrics and info endpoints.
func newBaseRouter(cfg RouterConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = 1 << 20
	}

	h := New(cfg.ServiceName)
	health := NewHealthHandler(cfg.Checks...)
	metricsHandler := NewMetricsHandler(cfg.Metrics)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)
	r.Get("/", h.Info)

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
