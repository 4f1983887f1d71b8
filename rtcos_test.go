package rtcos

import (
	"context"
	"testing"
	"time"

	"github.com/kaizoku-oh/rtcos/internal/critsec"
	"github.com/kaizoku-oh/rtcos/internal/timer"
)

func newTestSystem(t *testing.T) *System {
	t.Helper()
	return New(Config{
		MaxTasks:        4,
		MaxFutureEvents: 4,
		MaxMessages:     4,
		MaxTimers:       4,
		CriticalSection: &critsec.NoOp{},
	})
}

const (
	eventPing uint32 = 1
	eventPong uint32 = 2
)

func TestRegisterTaskHandlerRejectsDuplicateAndOutOfRange(t *testing.T) {
	s := newTestSystem(t)
	rh := &RecordingHandler{}
	if err := s.RegisterTaskHandler(0, rh.Handle, nil); err != nil {
		t.Fatalf("first registration should succeed, got %v", err)
	}
	if err := s.RegisterTaskHandler(0, rh.Handle, nil); !IsCode(err, ErrCodeInUse) {
		t.Fatalf("duplicate registration should fail with ErrCodeInUse, got %v", err)
	}
	if err := s.RegisterTaskHandler(99, rh.Handle, nil); !IsCode(err, ErrCodeOutOfRange) {
		t.Fatalf("out-of-range registration should fail with ErrCodeOutOfRange, got %v", err)
	}
}

func TestSendEventImmediateDelivery(t *testing.T) {
	s := newTestSystem(t)
	rh := &RecordingHandler{}
	s.RegisterTaskHandler(0, rh.Handle, nil)

	if err := s.SendEvent(0, eventPing, 0, false); err != nil {
		t.Fatalf("SendEvent failed: %v", err)
	}
	id, ok := s.findReadyTask()
	if !ok || id != 0 {
		t.Fatalf("findReadyTask = (%d, %v), want (0, true)", id, ok)
	}
	s.runReadyTask(id)
	calls := rh.Calls()
	if len(calls) != 1 || calls[0].Events != eventPing {
		t.Fatalf("calls = %+v, want one call with eventPing", calls)
	}
}

func TestSendEventDeferredDeliversOnTick(t *testing.T) {
	s := newTestSystem(t)
	rh := &RecordingHandler{}
	s.RegisterTaskHandler(0, rh.Handle, nil)

	if err := s.SendEvent(0, eventPing, 3, false); err != nil {
		t.Fatalf("SendEvent failed: %v", err)
	}
	if _, ok := s.findReadyTask(); ok {
		t.Fatal("task should not be ready before the deferred delay elapses")
	}
	s.Tick()
	s.Tick()
	if _, ok := s.findReadyTask(); ok {
		t.Fatal("task should still not be ready after 2 of 3 ticks")
	}
	s.Tick()
	id, ok := s.findReadyTask()
	if !ok || id != 0 {
		t.Fatal("task should be ready after the 3rd tick")
	}
	_ = id
}

func TestSendEventDeferredPeriodicReloads(t *testing.T) {
	s := newTestSystem(t)
	rh := &RecordingHandler{}
	s.RegisterTaskHandler(0, rh.Handle, nil)
	s.SendEvent(0, eventPing, 2, true)

	fires := 0
	for i := 0; i < 6; i++ {
		s.Tick()
		if id, ok := s.findReadyTask(); ok {
			s.runReadyTask(id)
			fires++
		}
	}
	if fires != 3 {
		t.Fatalf("fires = %d, want 3 over 6 ticks at period 2", fires)
	}
}

func TestBroadcastEventReachesAllTasks(t *testing.T) {
	s := newTestSystem(t)
	rh0, rh1 := &RecordingHandler{}, &RecordingHandler{}
	s.RegisterTaskHandler(0, rh0.Handle, nil)
	s.RegisterTaskHandler(1, rh1.Handle, nil)

	if err := s.BroadcastEvent(eventPong, 0, false); err != nil {
		t.Fatalf("BroadcastEvent failed: %v", err)
	}
	if !s.tasks.Ready(0) || !s.tasks.Ready(1) {
		t.Fatal("both tasks should be ready after broadcast")
	}
}

func TestClearEventRemovesPendingBits(t *testing.T) {
	s := newTestSystem(t)
	rh := &RecordingHandler{}
	s.RegisterTaskHandler(0, rh.Handle, nil)
	s.SendEvent(0, eventPing|eventPong, 0, false)
	s.ClearEvent(0, eventPing)
	if s.tasks.Slot(0).Events != eventPong {
		t.Fatalf("Events = %b, want only eventPong set", s.tasks.Slot(0).Events)
	}
}

func TestSendMessageAndGetMessage(t *testing.T) {
	s := newTestSystem(t)
	rh := &RecordingHandler{}
	s.RegisterTaskHandler(0, rh.Handle, nil)

	if err := s.SendMessage(0, "hello"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	s.currentTask = 0
	msg, err := s.GetMessage()
	if err != nil || msg != "hello" {
		t.Fatalf("GetMessage = (%v, %v), want (hello, nil)", msg, err)
	}
	if _, err := s.GetMessage(); !IsCode(err, ErrCodeMsgEmpty) {
		t.Fatalf("GetMessage on empty mailbox should fail with ErrCodeMsgEmpty, got %v", err)
	}
}

func TestSendMessageFullMailbox(t *testing.T) {
	s := newTestSystem(t)
	rh := &RecordingHandler{}
	s.RegisterTaskHandler(0, rh.Handle, nil)
	for i := 0; i < 4; i++ {
		if err := s.SendMessage(0, i); err != nil {
			t.Fatalf("SendMessage %d failed: %v", i, err)
		}
	}
	if err := s.SendMessage(0, "overflow"); !IsCode(err, ErrCodeMsgFull) {
		t.Fatalf("overflow send should fail with ErrCodeMsgFull, got %v", err)
	}
}

func TestCreateStartStopTimer(t *testing.T) {
	s := newTestSystem(t)
	fired := 0
	id, err := s.CreateTimer(timer.OneShot, func(id int, arg any) { fired++ }, nil)
	if err != nil {
		t.Fatalf("CreateTimer failed: %v", err)
	}
	if err := s.StartTimer(id, 3); err != nil {
		t.Fatalf("StartTimer failed: %v", err)
	}
	s.Tick()
	s.Tick()
	s.Tick()
	if fired != 0 {
		t.Fatalf("fired = %d before period strictly elapsed, want 0", fired)
	}
	s.Tick()
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
	if s.TimerExpired(id) {
		t.Fatal("one-shot timer should have disarmed itself after firing")
	}
}

func TestTickIncrementsTimersFiredMetric(t *testing.T) {
	s := newTestSystem(t)
	id, _ := s.CreateTimer(timer.OneShot, func(id int, arg any) {}, nil)
	s.StartTimer(id, 2)
	s.Tick()
	s.Tick()
	if got := s.Metrics.Snapshot().TimersFired; got != 0 {
		t.Fatalf("TimersFired = %d before period strictly elapsed, want 0", got)
	}
	s.Tick()
	if got := s.Metrics.Snapshot().TimersFired; got != 1 {
		t.Fatalf("TimersFired = %d, want 1", got)
	}
}

func TestStopTimerPreventsFiring(t *testing.T) {
	s := newTestSystem(t)
	fired := 0
	id, _ := s.CreateTimer(timer.Periodic, func(id int, arg any) { fired++ }, nil)
	s.StartTimer(id, 2)
	s.StopTimer(id)
	for i := 0; i < 10; i++ {
		s.Tick()
	}
	if fired != 0 {
		t.Fatalf("fired = %d after stop, want 0", fired)
	}
}

func TestSetAndGetTickCount(t *testing.T) {
	s := newTestSystem(t)
	s.SetTickCount(1000)
	if got := s.GetTickCount(); got != 1000 {
		t.Fatalf("GetTickCount() = %d, want 1000", got)
	}
}

func TestRunDispatchesReadyTaskAndIdles(t *testing.T) {
	s := newTestSystem(t)
	rh := &RecordingHandler{}
	s.RegisterTaskHandler(0, rh.Handle, nil)
	idle := &RecordingIdleHandler{}
	s.RegisterIdleHandler(idle.Handle)
	s.SendEvent(0, eventPing, 0, false)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if rh.CallCount() != 1 {
		t.Fatalf("CallCount() = %d, want 1", rh.CallCount())
	}
	if idle.Count() == 0 {
		t.Fatal("idle handler should have run at least once once the task queue drained")
	}
}

func TestPingPongUnhandledEventsReturnToQueue(t *testing.T) {
	s := newTestSystem(t)
	var handler RecordingHandler
	handler.Return = func(events uint32, msgCount uint8) uint32 {
		return events &^ eventPing // only claims to have handled eventPing
	}
	s.RegisterTaskHandler(0, handler.Handle, nil)
	s.SendEvent(0, eventPing|eventPong, 0, false)

	id, _ := s.findReadyTask()
	s.runReadyTask(id)

	if s.tasks.Slot(0).Events != eventPong {
		t.Fatalf("unhandled eventPong should be re-queued, Events = %b", s.tasks.Slot(0).Events)
	}
}
