package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fleetlink/fleetlink/internal/metrics"
	"github.com/fleetlink/fleetlink/internal/model"
	"github.com/fleetlink/fleetlink/internal/service"
	"github.com/fleetlink/fleetlink/internal/testutil/memstore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type vehicleEnv struct {
	router    http.Handler
	vehicles  *memstore.Vehicles
	customers *memstore.Customers
	metrics   *metrics.InMemoryRecorder
}

func newVehicleEnv(t *testing.T, vehicles []model.Vehicle, customers []model.Customer) *vehicleEnv {
	t.Helper()

	env := &vehicleEnv{
		vehicles:  memstore.NewVehicles(vehicles...),
		customers: memstore.NewCustomers(customers...),
		metrics:   metrics.NewInMemory(),
	}
	logger := discardLogger()

	enrichment := service.NewEnrichmentService(env.vehicles, env.customers, env.metrics, logger)
	vehicleSvc := service.NewVehicleService(env.vehicles, env.metrics)

	env.router = NewVehicleRouter(RouterConfig{
		ServiceName:   "vehicle-service",
		Logger:        logger,
		IsDevelopment: true,
		Metrics:       env.metrics,
	}, NewVehicleHandler(enrichment, vehicleSvc, logger))

	return env
}

type customerEnv struct {
	router http.Handler
	table  *memstore.CustomerTable
}

func newCustomerEnv(t *testing.T, customers ...model.Customer) *customerEnv {
	t.Helper()

	table := memstore.NewCustomerTable(customers...)
	logger := discardLogger()
	svc := service.NewCustomerService(table, nil, logger)

	return &customerEnv{
		table: table,
		router: NewCustomerRouter(RouterConfig{
			ServiceName:   "customer-service",
			Logger:        logger,
			IsDevelopment: true,
		}, NewCustomerHandler(svc, logger)),
	}
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
