// Package rtcos implements a cooperative, run-to-completion, fixed-priority
// task scheduler for resource-constrained targets. Tasks never preempt one
// another: a registered handler runs to completion before the dispatcher
// considers the next task. Concurrency comes from events, messages, and
// tick-driven timers rather than from goroutines inside the scheduled
// tasks themselves.
package rtcos

import (
	"context"
	"runtime"

	"github.com/kaizoku-oh/rtcos/internal/critsec"
	"github.com/kaizoku-oh/rtcos/internal/future"
	"github.com/kaizoku-oh/rtcos/internal/logging"
	"github.com/kaizoku-oh/rtcos/internal/task"
	"github.com/kaizoku-oh/rtcos/internal/timer"
)

// IdleHandler is invoked by Run whenever no task is ready and the
// future-event counter is zero (see future.Table.Count).
type IdleHandler func()

// TaskHandler is the function signature registered per task: it
// receives the coalesced event mask and mailbox depth for this
// dispatch, and returns whichever events it chose not to handle.
type TaskHandler = task.Handler

// System is an explicit scheduler instance. Every operation is a method
// on a System handle rather than a package-level function, so a process
// may host more than one independently-ticked scheduler (useful in
// simulation and in tests).
type System struct {
	cfg Config
	cs  critsec.Section
	log *logging.Logger

	tasks   *task.Table
	futures *future.Table
	timers  *timer.Table

	tick        uint32
	currentTask uint8
	idle        IdleHandler

	Metrics Metrics
}

// New constructs a System from cfg, filling in any zero-valued fields
// with their defaults.
func New(cfg Config) *System {
	cfg = cfg.withDefaults()
	return &System{
		cfg:     cfg,
		cs:      cfg.CriticalSection,
		log:     cfg.Logger,
		tasks:   task.New(cfg.MaxTasks, cfg.MaxMessages),
		futures: future.New(cfg.MaxFutureEvents),
		timers:  timer.New(cfg.MaxTimers),
	}
}

// RegisterTaskHandler binds handler to task id at priority id (lower id
// is higher priority). It returns ErrCodeOutOfRange if id is beyond the
// configured MaxTasks, or ErrCodeInUse if id is already registered.
func (s *System) RegisterTaskHandler(id uint8, handler task.Handler, arg any) error {
	if int(id) >= s.tasks.Len() {
		return NewTaskError("RegisterTaskHandler", int(id), ErrCodeOutOfRange, "task id beyond table size")
	}
	if s.tasks.Slot(id).InUse {
		return NewTaskError("RegisterTaskHandler", int(id), ErrCodeInUse, "task id already registered")
	}
	if !s.tasks.Register(id, handler, arg) {
		s.Metrics.ResourceExhausted.Add(1)
		return NewTaskError("RegisterTaskHandler", int(id), ErrCodeOutOfResources, "task table full")
	}
	s.log.Debugf("registered task handler id=%d", id)
	return nil
}

// RegisterIdleHandler sets the function Run calls when no task is ready
// and the future-event counter is zero. A nil handler disables idle
// callbacks.
func (s *System) RegisterIdleHandler(fn IdleHandler) {
	s.idle = fn
}

// SendEvent posts flags to task id's event word. If delay is non-zero,
// delivery is deferred by delay ticks; if reload is also true, the event
// re-arms itself every delay ticks after first delivery. Re-posting an
// already-armed (id, flags) pair updates only its remaining delay — its
// original reload setting is preserved, matching the upstream behavior
// of not allowing a re-post to convert a one-shot deferred event into a
// periodic one or vice versa.
func (s *System) SendEvent(id uint8, flags uint32, delay uint32, reload bool) error {
	if int(id) >= s.tasks.Len() || !s.tasks.Slot(id).InUse {
		return NewTaskError("SendEvent", int(id), ErrCodeInvalidTask, "unregistered task")
	}
	s.cs.Enter()
	defer s.cs.Exit()
	if delay == 0 {
		s.tasks.Slot(id).Events |= flags
		s.Metrics.EventsSent.Add(1)
		return nil
	}
	if !s.futures.Add(id, flags, delay, reload) {
		s.Metrics.ResourceExhausted.Add(1)
		return NewTaskError("SendEvent", int(id), ErrCodeOutOfResources, "future event table full")
	}
	s.Metrics.EventsDeferred.Add(1)
	return nil
}

// BroadcastEvent posts flags to every registered task. It returns the
// first error encountered, if any, after attempting delivery to every
// task; a partial failure does not roll back deliveries already made.
func (s *System) BroadcastEvent(flags uint32, delay uint32, reload bool) error {
	var first error
	for id := 0; id < s.tasks.Len(); id++ {
		if !s.tasks.Slot(uint8(id)).InUse {
			continue
		}
		if err := s.SendEvent(uint8(id), flags, delay, reload); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ClearEvent clears flags from task id's pending event word and removes
// the armed deferred delivery for (id, flags), if any. Repeated calls are
// no-ops.
func (s *System) ClearEvent(id uint8, flags uint32) error {
	if int(id) >= s.tasks.Len() || !s.tasks.Slot(id).InUse {
		return NewTaskError("ClearEvent", int(id), ErrCodeInvalidTask, "unregistered task")
	}
	s.cs.Enter()
	defer s.cs.Exit()
	s.tasks.Slot(id).Events &^= flags
	s.futures.Delete(id, flags)
	return nil
}

// SendMessage queues msg in task id's mailbox. It returns ErrCodeMsgFull
// if the mailbox is at capacity.
func (s *System) SendMessage(id uint8, msg any) error {
	if int(id) >= s.tasks.Len() || !s.tasks.Slot(id).InUse {
		return NewTaskError("SendMessage", int(id), ErrCodeInvalidTask, "unregistered task")
	}
	s.cs.Enter()
	defer s.cs.Exit()
	if !s.tasks.Slot(id).Mailbox.Push(msg) {
		s.Metrics.MailboxFull.Add(1)
		return NewTaskError("SendMessage", int(id), ErrCodeMsgFull, "mailbox full")
	}
	s.Metrics.MessagesSent.Add(1)
	return nil
}

// BroadcastMessage queues msg in every registered task's mailbox. Like
// BroadcastEvent, it returns the first error encountered, if any.
func (s *System) BroadcastMessage(msg any) error {
	var first error
	for id := 0; id < s.tasks.Len(); id++ {
		if !s.tasks.Slot(uint8(id)).InUse {
			continue
		}
		if err := s.SendMessage(uint8(id), msg); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// GetMessage dequeues the oldest message from the mailbox of the task
// currently being dispatched. It must only be called from within a task
// handler; outside of dispatch, currentTask is whatever task last ran
// (or 0 before the first dispatch), matching the upstream precondition
// that callers only invoke it from their own handler.
func (s *System) GetMessage() (any, error) {
	s.cs.Enter()
	defer s.cs.Exit()
	msg, ok := s.tasks.Slot(s.currentTask).Mailbox.Pop()
	if !ok {
		return nil, NewTaskError("GetMessage", int(s.currentTask), ErrCodeMsgEmpty, "mailbox empty")
	}
	return msg, nil
}

// CreateTimer reserves a software timer bound to cb, left disarmed until
// StartTimer is called.
func (s *System) CreateTimer(kind timer.Kind, cb timer.Callback, arg any) (int, error) {
	s.cs.Enter()
	defer s.cs.Exit()
	id, ok := s.timers.Create(kind, cb, arg)
	if !ok {
		s.Metrics.ResourceExhausted.Add(1)
		return 0, NewError("CreateTimer", ErrCodeOutOfResources, "timer table full")
	}
	return id, nil
}

// StartTimer arms timer id to fire after period ticks (and every period
// ticks thereafter if created Periodic).
func (s *System) StartTimer(id int, period uint32) error {
	s.cs.Enter()
	defer s.cs.Exit()
	if !s.timers.Start(id, period, s.tick) {
		return NewError("StartTimer", ErrCodeNotFound, "unknown timer id")
	}
	return nil
}

// StopTimer disarms timer id without deleting it.
func (s *System) StopTimer(id int) error {
	s.cs.Enter()
	defer s.cs.Exit()
	if !s.timers.Stop(id) {
		return NewError("StopTimer", ErrCodeNotFound, "unknown timer id")
	}
	return nil
}

// TimerExpired reports whether timer id is armed and its period has
// elapsed as of the current tick.
func (s *System) TimerExpired(id int) bool {
	s.cs.Enter()
	defer s.cs.Exit()
	return s.timers.Expired(id, s.tick)
}

// SetTickCount overrides the running tick counter, e.g. to synchronize
// with an external time source at startup.
func (s *System) SetTickCount(tick uint32) {
	s.cs.Enter()
	defer s.cs.Exit()
	s.tick = tick
}

// GetTickCount returns the current tick counter value.
func (s *System) GetTickCount() uint32 {
	s.cs.Enter()
	defer s.cs.Exit()
	return s.tick
}

// Delay busy-waits until the tick counter advances by at least ticks,
// yielding the goroutine between checks. It mirrors the original port's
// busy-wait rtcos_delay, which has no blocking primitive to fall back
// on; callers on a hosted target should prefer SendEvent with a delay
// for anything longer than a few ticks.
func (s *System) Delay(ticks uint32) {
	target := s.GetTickCount() + ticks
	for int32(s.GetTickCount()-target) < 0 {
		runtime.Gosched()
	}
}

// Tick advances the scheduler's notion of time by one unit. It delivers
// any future event whose delay has elapsed, reloading periodic ones and
// freeing one-shot ones, then fires any timer whose period has elapsed.
// Timer callbacks run inside the critical section, matching the upstream
// implementation; a callback that calls back into SendEvent or another
// System method re-enters the same section, which is why CriticalSection
// must tolerate one level of nesting.
func (s *System) Tick() {
	s.cs.Enter()
	defer s.cs.Exit()
	s.tick++
	s.Metrics.Ticks.Add(1)
	s.futures.Advance(func(taskID uint8, flags uint32) {
		s.tasks.Slot(taskID).Events |= flags
	})
	fired := s.timers.Advance(s.tick)
	s.Metrics.TimersFired.Add(uint64(fired))
}

// findReadyTask scans tasks in priority order (lowest id first) and
// returns the id of the first one with pending events or a queued
// message. ok is false if no task is ready.
func (s *System) findReadyTask() (id uint8, ok bool) {
	s.cs.Enter()
	defer s.cs.Exit()
	for i := 0; i < s.tasks.Len(); i++ {
		if s.tasks.Slot(uint8(i)).InUse && s.tasks.Ready(uint8(i)) {
			return uint8(i), true
		}
	}
	return 0, false
}

// runReadyTask captures and clears id's event word, and captures its
// mailbox count, under the critical section, invokes its handler outside the critical
// section, then OR-merges back any events the handler reported as
// unhandled so a higher-priority task gets a chance to run first on the
// next pass.
func (s *System) runReadyTask(id uint8) {
	s.cs.Enter()
	slot := s.tasks.Slot(id)
	events := slot.Events
	slot.Events = 0
	msgCount := uint8(slot.Mailbox.Count())
	handler, arg := slot.Handler, slot.Arg
	s.currentTask = id
	s.cs.Exit()

	unhandled := handler(events, msgCount, arg)
	s.Metrics.Dispatches.Add(1)

	s.cs.Enter()
	slot.Events |= unhandled
	s.cs.Exit()
}

// Run drives the dispatch loop until ctx is cancelled: while a task is
// ready, run it; otherwise, if an idle handler is registered and the
// future-event counter is zero, call it. Advancing the tick is the caller's
// responsibility — typically a periodic goroutine or hardware timer ISR
// calling Tick independently of Run.
func (s *System) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if id, ok := s.findReadyTask(); ok {
			s.runReadyTask(id)
			continue
		}
		if s.idle != nil && s.futures.Count() == 0 {
			s.idle()
			s.Metrics.IdleRuns.Add(1)
			continue
		}
		runtime.Gosched()
	}
}
