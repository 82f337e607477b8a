package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fleetlink/fleetlink/internal/metrics"
)

func TestMetricsHandler(t *testing.T) {
	rec := metrics.NewInMemory()
	rec.ObserveUpstreamCall("list", metrics.OutcomeSuccess, 250*time.Millisecond)
	rec.ObserveUpstreamCall("get", metrics.OutcomeUnavailable, time.Second)
	rec.AddVehiclesEnriched(3)
	rec.AddOwnersUnresolved(1)
	rec.IncVehicleCreated()

	h := NewMetricsHandler(rec)
	w := httptest.NewRecorder()
	h.Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected Content-Type: %s", ct)
	}

	body := w.Body.String()
	expected := []string{
		`fleetlink_customer_requests_total{op="get",outcome="unavailable"} 1`,
		`fleetlink_customer_requests_total{op="list",outcome="success"} 1`,
		`fleetlink_customer_request_duration_seconds_sum{op="list",outcome="success"} 0.250000`,
		`fleetlink_vehicle_owners_total{status="resolved"} 3`,
		`fleetlink_vehicle_owners_total{status="unresolved"} 1`,
		`fleetlink_vehicles_created_total 1`,
		`fleetlink_customers_created_total 0`,
	}
	for _, line := range expected {
		if !strings.Contains(body, line) {
			t.Errorf("missing metric line %q in:\n%s", line, body)
		}
	}

	// Series are sorted by op then outcome
	if strings.Index(body, `op="get"`) > strings.Index(body, `op="list"`) {
		t.Error("expected get series before list series")
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	h := NewMetricsHandler(nil)
	w := httptest.NewRecorder()
	h.Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}
