// Package timer implements the software timer wheel: a flat array of
// timers, each compared against the running tick count using
// wraparound-safe unsigned subtraction, matching rtcos_create_timer /
// rtcos_start_timer / rtcos_stop_timer / rtcos_timer_expired and the
// timer-advance loop in rtcos_update_tick.
package timer

// Kind distinguishes a timer that rearms itself from one that fires once.
type Kind int

const (
	Periodic Kind = iota
	OneShot
)

// Callback is invoked when a timer expires during Advance.
type Callback func(id int, arg any)

// Timer is one entry in the wheel. Armed is false for a timer that has
// been created but never started, or that was stopped.
type Timer struct {
	InUse     bool
	Armed     bool
	Kind      Kind
	Period    uint32
	StartTick uint32
	Callback  Callback
	Arg       any
}

// Table is the fixed-size array of timers.
type Table struct {
	timers []Timer
	count  int
}

// New returns a Table with room for capacity timers.
func New(capacity int) *Table {
	return &Table{timers: make([]Timer, capacity)}
}

// Len returns the fixed capacity of the table.
func (t *Table) Len() int { return len(t.timers) }

// Count returns the number of created (not necessarily armed) timers.
func (t *Table) Count() int { return t.count }

func (t *Table) findFree() int {
	for i := range t.timers {
		if !t.timers[i].InUse {
			return i
		}
	}
	return -1
}

// Create reserves a timer slot bound to cb and kind, leaving it disarmed
// until Start is called. It returns the timer's id and true on success,
// or false if the table is full.
func (t *Table) Create(kind Kind, cb Callback, arg any) (int, bool) {
	idx := t.findFree()
	if idx < 0 {
		return 0, false
	}
	tm := &t.timers[idx]
	tm.InUse = true
	tm.Armed = false
	tm.Kind = kind
	tm.Callback = cb
	tm.Arg = arg
	t.count++
	return idx, true
}

// Start arms timer id to fire after period ticks (and every period ticks
// thereafter if it is Periodic), measuring elapsed time from now. It
// reports false if id is out of range or was never created.
func (t *Table) Start(id int, period, now uint32) bool {
	if id < 0 || id >= len(t.timers) || !t.timers[id].InUse {
		return false
	}
	tm := &t.timers[id]
	tm.Period = period
	tm.StartTick = now
	tm.Armed = true
	return true
}

// Stop disarms timer id without deleting it; it can be restarted later
// with Start. It reports false if id is out of range or was never
// created.
func (t *Table) Stop(id int) bool {
	if id < 0 || id >= len(t.timers) || !t.timers[id].InUse {
		return false
	}
	t.timers[id].Armed = false
	return true
}

// Expired reports whether timer id is armed and its period has strictly
// elapsed as of now. The subtraction is unsigned so it remains correct
// across a tick-counter wraparound.
func (t *Table) Expired(id int, now uint32) bool {
	if id < 0 || id >= len(t.timers) || !t.timers[id].InUse || !t.timers[id].Armed {
		return false
	}
	tm := &t.timers[id]
	return now-tm.StartTick > tm.Period
}

// Advance scans every timer and fires the callback of each one whose
// period has elapsed as of now, before disarming a OneShot timer or
// resetting StartTick for its next period. A callback that restarts its
// own (OneShot) timer therefore has that restart clobbered by the
// disarm/reset that follows it — preserved as observed upstream
// behavior rather than reordered to let the restart survive. Advance
// returns the number of timers it fired, for callers that track it.
func (t *Table) Advance(now uint32) int {
	fired := 0
	for id := range t.timers {
		tm := &t.timers[id]
		if !tm.InUse || !tm.Armed {
			continue
		}
		if now-tm.StartTick <= tm.Period {
			continue
		}
		if tm.Callback != nil {
			tm.Callback(id, tm.Arg)
		}
		if tm.Kind == OneShot {
			tm.Armed = false
		}
		tm.StartTick = now
		fired++
	}
	return fired
}
