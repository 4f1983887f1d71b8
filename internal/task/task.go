// Package task holds the fixed-size table of task priority slots the
// dispatcher scans. Lower index means higher priority, matching the
// upstream rtcos_task_t array indexed by task ID.
package task

import "github.com/kaizoku-oh/rtcos/internal/fifo"

// Handler is invoked once per dispatch with the coalesced event mask that
// became ready, the number of queued mailbox messages, and the opaque
// argument captured at registration. It returns the subset of events it
// did not handle, which the dispatcher OR-merges back into the task so a
// higher-priority task gets a chance to run before this task is revisited.
type Handler func(events uint32, msgCount uint8, arg any) uint32

// Slot is one task's state: its registered handler, its pending event
// mask, and its mailbox. Slots are never recycled once registered.
type Slot struct {
	Handler Handler
	Arg     any
	Events  uint32
	Mailbox fifo.Fifo
	InUse   bool
}

// Table is the fixed-size, append-only array of task slots.
type Table struct {
	slots        []Slot
	count        int
	mailboxDepth int
}

// New returns a Table with maxTasks slots, each with a mailbox that can
// hold mailboxDepth messages.
func New(maxTasks, mailboxDepth int) *Table {
	t := &Table{
		slots:        make([]Slot, maxTasks),
		mailboxDepth: mailboxDepth,
	}
	for i := range t.slots {
		t.slots[i].Mailbox.Init(mailboxDepth)
	}
	return t
}

// Len returns the fixed capacity of the table (MAX_TASKS).
func (t *Table) Len() int { return len(t.slots) }

// Count returns the number of registered task slots.
func (t *Table) Count() int { return t.count }

// Slot returns a pointer to the slot at id for direct inspection/mutation
// by the dispatcher. Callers are responsible for holding the critical
// section around any mutation.
func (t *Table) Slot(id uint8) *Slot { return &t.slots[id] }

// Register binds handler and arg to task id. It is idempotence-rejected:
// calling it twice on the same id returns false.
func (t *Table) Register(id uint8, handler Handler, arg any) bool {
	if int(id) >= len(t.slots) {
		return false
	}
	if t.slots[id].InUse {
		return false
	}
	t.slots[id].Handler = handler
	t.slots[id].Arg = arg
	t.slots[id].InUse = true
	t.count++
	return true
}

// Ready reports whether slot id has pending events or a non-empty
// mailbox.
func (t *Table) Ready(id uint8) bool {
	s := &t.slots[id]
	return s.Events != 0 || !s.Mailbox.Empty()
}
