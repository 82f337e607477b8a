// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Upstream call outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Customer service calls made by the vehicle service.
	// op is "get" or "list"; outcome is one of the Outcome constants.
	ObserveUpstreamCall(op, outcome string, duration time.Duration)

	// Enrichment results
	AddVehiclesEnriched(n int)
	AddOwnersUnresolved(n int)

	// Record management
	IncVehicleCreated()
	IncCustomerCreated()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
