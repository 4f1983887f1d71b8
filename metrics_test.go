package rtcos

import "testing"

func TestSnapshotReflectsCounters(t *testing.T) {
	var m Metrics
	m.Dispatches.Add(3)
	m.EventsSent.Add(2)
	snap := m.Snapshot()
	if snap.Dispatches != 3 || snap.EventsSent != 2 {
		t.Fatalf("snapshot = %+v, want Dispatches=3 EventsSent=2", snap)
	}
}

func TestResetZeroesCounters(t *testing.T) {
	var m Metrics
	m.Ticks.Add(10)
	m.Reset()
	if m.Snapshot().Ticks != 0 {
		t.Fatal("Reset should zero all counters")
	}
}
