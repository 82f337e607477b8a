package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_UpstreamCalls(t *testing.T) {
	m := NewInMemory()

	m.ObserveUpstreamCall("list", OutcomeSuccess, 10*time.Millisecond)
	m.ObserveUpstreamCall("list", OutcomeUnavailable, 5*time.Millisecond)
	m.ObserveUpstreamCall("get", OutcomeNotFound, time.Millisecond)

	snap := m.Snapshot()

	if got := snap.UpstreamCalls("list"); got != 2 {
		t.Errorf("expected 2 list calls, got %d", got)
	}
	if got := snap.UpstreamCalls("get"); got != 1 {
		t.Errorf("expected 1 get call, got %d", got)
	}

	stats := snap.Upstream[UpstreamKey{Op: "list", Outcome: OutcomeSuccess}]
	if stats.DurationTotalNs != (10 * time.Millisecond).Nanoseconds() {
		t.Errorf("unexpected duration total: %d", stats.DurationTotalNs)
	}
}

func TestInMemoryRecorder_SnapshotIsCopy(t *testing.T) {
	m := NewInMemory()
	m.ObserveUpstreamCall("get", OutcomeSuccess, time.Millisecond)

	snap := m.Snapshot()
	m.ObserveUpstreamCall("get", OutcomeSuccess, time.Millisecond)

	if got := snap.UpstreamCalls("get"); got != 1 {
		t.Errorf("snapshot changed after further calls: got %d", got)
	}
}

func TestInMemoryRecorder_Counters(t *testing.T) {
	m := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.AddVehiclesEnriched(2)
			m.AddOwnersUnresolved(1)
			m.IncVehicleCreated()
			m.IncCustomerCreated()
		}()
	}
	wg.Wait()

	// Non-positive additions are ignored.
	m.AddVehiclesEnriched(0)
	m.AddOwnersUnresolved(-3)

	snap := m.Snapshot()
	if snap.VehiclesEnriched != 100 {
		t.Errorf("expected 100 vehicles enriched, got %d", snap.VehiclesEnriched)
	}
	if snap.OwnersUnresolved != 50 {
		t.Errorf("expected 50 owners unresolved, got %d", snap.OwnersUnresolved)
	}
	if snap.VehiclesCreated != 50 || snap.CustomersCreated != 50 {
		t.Errorf("unexpected created counters: %+v", snap)
	}
}
