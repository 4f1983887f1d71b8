package rtcos

import "sync/atomic"

// Metrics tracks scheduler-wide operational counters. All fields are safe
// for concurrent access since Tick and the public API may be called from
// different goroutines under the critical section's protection.
type Metrics struct {
	Dispatches        atomic.Uint64 // task handlers invoked
	EventsSent        atomic.Uint64 // SendEvent/BroadcastEvent deliveries
	EventsDeferred    atomic.Uint64 // deferred (delayed) event arms
	TimersFired       atomic.Uint64 // timer callback invocations
	MessagesSent      atomic.Uint64 // SendMessage/BroadcastMessage deliveries
	MailboxFull       atomic.Uint64 // rejected sends due to a full mailbox
	ResourceExhausted atomic.Uint64 // operations rejected due to a full table
	Ticks             atomic.Uint64 // Tick() calls
	IdleRuns          atomic.Uint64 // idle handler invocations
}

// MetricsSnapshot is a point-in-time copy of Metrics' counters.
type MetricsSnapshot struct {
	Dispatches        uint64
	EventsSent        uint64
	EventsDeferred    uint64
	TimersFired       uint64
	MessagesSent      uint64
	MailboxFull       uint64
	ResourceExhausted uint64
	Ticks             uint64
	IdleRuns          uint64
}

// Snapshot returns a consistent-enough point-in-time read of every
// counter. Individual fields may be read at slightly different instants
// under concurrent writers; this is adequate for monitoring, not for
// exact accounting.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Dispatches:        m.Dispatches.Load(),
		EventsSent:        m.EventsSent.Load(),
		EventsDeferred:    m.EventsDeferred.Load(),
		TimersFired:       m.TimersFired.Load(),
		MessagesSent:      m.MessagesSent.Load(),
		MailboxFull:       m.MailboxFull.Load(),
		ResourceExhausted: m.ResourceExhausted.Load(),
		Ticks:             m.Ticks.Load(),
		IdleRuns:          m.IdleRuns.Load(),
	}
}

// Reset zeroes every counter. Primarily useful in tests.
func (m *Metrics) Reset() {
	m.Dispatches.Store(0)
	m.EventsSent.Store(0)
	m.EventsDeferred.Store(0)
	m.TimersFired.Store(0)
	m.MessagesSent.Store(0)
	m.MailboxFull.Store(0)
	m.ResourceExhausted.Store(0)
	m.Ticks.Store(0)
	m.IdleRuns.Store(0)
}
