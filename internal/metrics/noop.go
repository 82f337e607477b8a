package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveUpstreamCall is a no-op.
func (n *NoopRecorder) ObserveUpstreamCall(op, outcome string, duration time.Duration) {}

// AddVehiclesEnriched is a no-op.
func (n *NoopRecorder) AddVehiclesEnriched(count int) {}

// AddOwnersUnresolved is a no-op.
func (n *NoopRecorder) AddOwnersUnresolved(count int) {}

// IncVehicleCreated is a no-op.
func (n *NoopRecorder) IncVehicleCreated() {}

// IncCustomerCreated is a no-op.
func (n *NoopRecorder) IncCustomerCreated() {}
