// Package future implements the deferred-event table: a flat array of
// pending timed event deliveries, each identified by its (task, flags)
// pair, with optional auto-reload. It is the Go translation of
// rtcos_future_event_t / _rtcos_add_future_event / rtcos_update_tick's
// future-event loop.
package future

// Event is one armed deferred delivery.
type Event struct {
	InUse   bool
	TaskID  uint8
	Flags   uint32
	Timeout uint32 // remaining ticks until delivery
	Reload  uint32 // ticks to reload on delivery; 0 means one-shot
}

// Table is the fixed-size array of future events, scanned linearly.
type Table struct {
	events []Event
	count  int
}

// New returns an empty table with room for capacity entries.
func New(capacity int) *Table {
	return &Table{events: make([]Event, capacity)}
}

// Count returns the table's pending-event counter. Add of a new entry
// raises it; Delete and every delivery lower it (never below 0),
// including the delivery of a periodic entry that reloads and stays
// armed, so it can be lower than the number of armed entries.
func (t *Table) Count() int { return t.count }

// find returns the index of the live entry matching (taskID, flags), or
// -1 if none exists. At most one such entry may exist at a time.
func (t *Table) find(taskID uint8, flags uint32) int {
	for i := range t.events {
		e := &t.events[i]
		if e.InUse && e.TaskID == taskID && e.Flags == flags {
			return i
		}
	}
	return -1
}

func (t *Table) findFree() int {
	for i := range t.events {
		if !t.events[i].InUse {
			return i
		}
	}
	return -1
}

// Add arms (or re-arms) a deferred delivery. If a live entry for
// (taskID, flags) already exists, only its Timeout is overwritten — the
// original Reload is left untouched. This matches the upstream behavior:
// a previously one-shot event cannot be converted to periodic (or vice
// versa) by re-posting; callers that need different reload semantics
// must clear the event first.
//
// Add reports false when no free slot is available.
func (t *Table) Add(taskID uint8, flags, delay uint32, periodic bool) bool {
	if idx := t.find(taskID, flags); idx >= 0 {
		t.events[idx].Timeout = delay
		return true
	}
	idx := t.findFree()
	if idx < 0 {
		return false
	}
	e := &t.events[idx]
	e.InUse = true
	e.TaskID = taskID
	e.Flags = flags
	e.Timeout = delay
	if periodic {
		e.Reload = delay
	} else {
		e.Reload = 0
	}
	t.count++
	return true
}

// Delete removes the live entry matching (taskID, flags), if any. It
// reports whether an entry was found and removed.
func (t *Table) Delete(taskID uint8, flags uint32) bool {
	idx := t.find(taskID, flags)
	if idx < 0 {
		return false
	}
	t.events[idx].InUse = false
	if t.count > 0 {
		t.count--
	}
	return true
}

// Advance decrements every armed entry's timeout by one tick. For each
// entry that reaches zero, deliver is called with the target task and
// event mask so the caller can OR it into that task's event word. A
// one-shot entry (Reload == 0) is freed after delivery; a periodic entry
// reloads its Timeout and stays armed.
func (t *Table) Advance(deliver func(taskID uint8, flags uint32)) {
	for i := range t.events {
		e := &t.events[i]
		if !e.InUse {
			continue
		}
		e.Timeout--
		if e.Timeout != 0 {
			continue
		}
		if t.count > 0 {
			t.count--
		}
		deliver(e.TaskID, e.Flags)
		if e.Reload == 0 {
			e.InUse = false
		} else {
			e.Timeout = e.Reload
		}
	}
}
