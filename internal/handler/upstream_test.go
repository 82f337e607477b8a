package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fleetlink/fleetlink/internal/customerclient"
	"github.com/fleetlink/fleetlink/internal/discovery"
	"github.com/fleetlink/fleetlink/internal/model"
	"github.com/fleetlink/fleetlink/internal/service"
	"github.com/fleetlink/fleetlink/internal/testutil/memstore"
)

// newLinkedVehicleRouter serves vehicles whose owners are fetched over HTTP
// from a real customer router. basePath is appended to the customer
// service URL to simulate a misconfigured location.
func newLinkedVehicleRouter(t *testing.T, vehicles []model.Vehicle, basePath string) http.Handler {
	t.Helper()

	customers := httptest.NewServer(newCustomerEnv(t, sampleCustomers()...).router)
	t.Cleanup(customers.Close)

	logger := discardLogger()
	client := customerclient.New(discovery.StaticResolver(customers.URL+basePath), customerclient.Options{
		ReadTimeout: time.Second,
	})
	store := memstore.NewVehicles(vehicles...)

	return NewVehicleRouter(RouterConfig{ServiceName: "vehicle-service", Logger: logger, IsDevelopment: true},
		NewVehicleHandler(
			service.NewEnrichmentService(store, client, nil, logger),
			service.NewVehicleService(store, nil),
			logger,
		))
}

func TestVehicleRouter_OwnerResolvedOverHTTP(t *testing.T) {
	router := newLinkedVehicleRouter(t, []model.Vehicle{
		{ID: 1, Brand: "Toyota", Model: "Yaris", RegistrationNumber: "AB-1", OwnerID: 2},
		{ID: 2, Brand: "Renault", Model: "Clio", RegistrationNumber: "CD-2", OwnerID: 99},
		{ID: 3, Brand: "Fiat", Model: "Panda", RegistrationNumber: "EF-3", OwnerID: 0},
	}, "")

	rec := doRequest(t, router, http.MethodGet, "/vehicles/1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"customerFullName":"Amal ALAOUI"`) {
		t.Fatalf("expected owner Amal ALAOUI, got %d: %s", rec.Code, rec.Body.String())
	}

	// Unknown and non-positive owner ids are both plain misses
	for _, path := range []string{"/vehicles/2", "/vehicles/3"} {
		rec := doRequest(t, router, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"associatedCustomer":null`) {
			t.Errorf("%s: expected null owner, got %s", path, rec.Body.String())
		}
	}
}

func TestVehicleRouter_MisplacedCustomerServiceIsUnavailable(t *testing.T) {
	router := newLinkedVehicleRouter(t, []model.Vehicle{
		{ID: 1, Brand: "Toyota", Model: "Yaris", RegistrationNumber: "AB-1", OwnerID: 2},
	}, "/api")

	for _, path := range []string{"/vehicles/1", "/vehicles?ownerId=2", "/vehicles"} {
		rec := doRequest(t, router, http.MethodGet, path, "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected status 503, got %d: %s", path, rec.Code, rec.Body.String())
			continue
		}
		if code := decodeError(t, rec.Body.Bytes()).Code; code != "UPSTREAM_UNAVAILABLE" {
			t.Errorf("%s: unexpected error code: %s", path, code)
		}
	}
}
