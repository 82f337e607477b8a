package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// UpstreamKey identifies an upstream call series.
type UpstreamKey struct {
	Op      string
	Outcome string
}

// UpstreamStats aggregates calls for one series.
type UpstreamStats struct {
	Count           uint64
	DurationTotalNs int64
}

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Upstream         map[UpstreamKey]UpstreamStats
	VehiclesEnriched uint64
	OwnersUnresolved uint64
	VehiclesCreated  uint64
	CustomersCreated uint64
}

// UpstreamCalls returns the call count for op across all outcomes.
func (s Snapshot) UpstreamCalls(op string) uint64 {
	var total uint64
	for k, v := range s.Upstream {
		if k.Op == op {
			total += v.Count
		}
	}
	return total
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	mu       sync.Mutex
	upstream map[UpstreamKey]UpstreamStats

	vehiclesEnriched uint64
	ownersUnresolved uint64
	vehiclesCreated  uint64
	customersCreated uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{upstream: make(map[UpstreamKey]UpstreamStats)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	upstream := make(map[UpstreamKey]UpstreamStats, len(m.upstream))
	for k, v := range m.upstream {
		upstream[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		Upstream:         upstream,
		VehiclesEnriched: atomic.LoadUint64(&m.vehiclesEnriched),
		OwnersUnresolved: atomic.LoadUint64(&m.ownersUnresolved),
		VehiclesCreated:  atomic.LoadUint64(&m.vehiclesCreated),
		CustomersCreated: atomic.LoadUint64(&m.customersCreated),
	}
}

// ObserveUpstreamCall records one customer service call.
func (m *InMemoryRecorder) ObserveUpstreamCall(op, outcome string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := UpstreamKey{Op: op, Outcome: outcome}
	stats := m.upstream[key]
	stats.Count++
	stats.DurationTotalNs += duration.Nanoseconds()
	m.upstream[key] = stats
}

// AddVehiclesEnriched adds to the enriched vehicle counter.
func (m *InMemoryRecorder) AddVehiclesEnriched(n int) {
	if n > 0 {
		atomic.AddUint64(&m.vehiclesEnriched, uint64(n))
	}
}

// AddOwnersUnresolved adds to the unresolved owner counter.
func (m *InMemoryRecorder) AddOwnersUnresolved(n int) {
	if n > 0 {
		atomic.AddUint64(&m.ownersUnresolved, uint64(n))
	}
}

// IncVehicleCreated increments vehicle created counter.
func (m *InMemoryRecorder) IncVehicleCreated() {
	atomic.AddUint64(&m.vehiclesCreated, 1)
}

// IncCustomerCreated increments customer created counter.
func (m *InMemoryRecorder) IncCustomerCreated() {
	atomic.AddUint64(&m.customersCreated, 1)
}
