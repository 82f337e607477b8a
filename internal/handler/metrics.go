package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/fleetlink/fleetlink/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	keys := make([]metrics.UpstreamKey, 0, len(snap.Upstream))
	for k := range snap.Upstream {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Op != keys[j].Op {
			return keys[i].Op < keys[j].Op
		}
		return keys[i].Outcome < keys[j].Outcome
	})

	for _, k := range keys {
		writeMetric(w, "fleetlink_customer_requests_total{op=%q,outcome=%q} %d\n", k.Op, k.Outcome, snap.Upstream[k].Count)
	}
	for _, k := range keys {
		stats := snap.Upstream[k]
		writeMetric(w, "fleetlink_customer_request_duration_seconds_count{op=%q,outcome=%q} %d\n", k.Op, k.Outcome, stats.Count)
		writeMetric(w, "fleetlink_customer_request_duration_seconds_sum{op=%q,outcome=%q} %.6f\n", k.Op, k.Outcome, float64(stats.DurationTotalNs)/1e9)
	}

	writeMetric(w, "fleetlink_vehicle_owners_total{status=\"resolved\"} %d\n", snap.VehiclesEnriched)
	writeMetric(w, "fleetlink_vehicle_owners_total{status=\"unresolved\"} %d\n", snap.OwnersUnresolved)

	writeMetric(w, "fleetlink_vehicles_created_total %d\n", snap.VehiclesCreated)
	writeMetric(w, "fleetlink_customers_created_total %d\n", snap.CustomersCreated)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
