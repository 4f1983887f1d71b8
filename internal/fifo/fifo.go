// Package fifo implements the bounded single-producer/single-consumer ring
// used as each task's mailbox. It stores only opaque message handles; the
// core never looks inside a message, ownership passes from sender to
// receiver by convention only.
package fifo

// Fifo is a fixed-capacity ring buffer of opaque message handles. The zero
// value is not ready to use; call New or Init first. Head/tail bookkeeping
// mirrors the head/tail/count fields of the upstream ring (and the same
// wrap-on-overflow idiom used by any SQ/CQ ring: advance the index, wrap it
// modulo capacity, track the live count separately so full and empty are
// never confused when head == tail).
type Fifo struct {
	buf   []any
	head  int
	tail  int
	count int
}

// New returns a Fifo with room for capacity messages.
func New(capacity int) *Fifo {
	f := &Fifo{}
	f.Init(capacity)
	return f
}

// Init (re)sizes and empties the ring. It is safe to call on a Fifo that
// already holds messages; they are discarded.
func (f *Fifo) Init(capacity int) {
	f.buf = make([]any, capacity)
	f.head = 0
	f.tail = 0
	f.count = 0
}

// Push appends msg to the ring. It returns false if the ring is full.
func (f *Fifo) Push(msg any) bool {
	if f.Full() {
		return false
	}
	f.buf[f.head] = msg
	f.head++
	if f.head >= len(f.buf) {
		f.head = 0
	}
	f.count++
	return true
}

// Pop removes and returns the oldest message. It returns (nil, false) if
// the ring is empty.
func (f *Fifo) Pop() (any, bool) {
	if f.Empty() {
		return nil, false
	}
	msg := f.buf[f.tail]
	f.buf[f.tail] = nil
	f.tail++
	if f.tail >= len(f.buf) {
		f.tail = 0
	}
	f.count--
	return msg, true
}

// Count returns the number of messages currently queued.
func (f *Fifo) Count() int { return f.count }

// Empty reports whether the ring holds no messages.
func (f *Fifo) Empty() bool { return f.count == 0 }

// Full reports whether the ring is at capacity.
func (f *Fifo) Full() bool { return f.count >= len(f.buf) }

// Capacity returns the ring's fixed size.
func (f *Fifo) Capacity() int { return len(f.buf) }
