package core

import (
	"testing"
)

func resetSched() {
	ResetTimers()
	SetTime(0)
}

func TestTimerDispatchOrder(t *testing.T) {
	resetSched()

	var fired []int
	mk := func(id int, wake uint32) *Timer {
		tm := &Timer{WakeTime: wake}
		tm.Handler = func(*Timer) uint8 {
			fired = append(fired, id)
			return SF_DONE
		}
		return tm
	}

	// Insert out of order
	ScheduleTimer(mk(3, 300))
	ScheduleTimer(mk(1, 100))
	ScheduleTimer(mk(2, 200))

	SetTime(250)
	TimerDispatch()

	if len(fired) != 2 || fired[0] != 1 || fired[1] != 2 {
		t.Errorf("Expected timers 1,2 fired in order, got %v", fired)
	}

	SetTime(300)
	TimerDispatch()
	if len(fired) != 3 || fired[2] != 3 {
		t.Errorf("Expected timer 3 fired last, got %v", fired)
	}

	if TimersPending() {
		t.Errorf("Expected empty schedule after all timers fired")
	}
}

func TestTimerReschedule(t *testing.T) {
	resetSched()

	count := 0
	tm := &Timer{WakeTime: 10}
	tm.Handler = func(tp *Timer) uint8 {
		count++
		if count == 5 {
			return SF_DONE
		}
		tp.WakeTime += 10
		return SF_RESCHEDULE
	}
	ScheduleTimer(tm)

	for i := 0; i < 10; i++ {
		wake, ok := NextWake()
		if !ok {
			break
		}
		SetTime(wake)
		TimerDispatch()
	}

	if count != 5 {
		t.Errorf("Expected handler to run 5 times, ran %d", count)
	}
}

func TestUnscheduleTimer(t *testing.T) {
	resetSched()

	fired := false
	tm := &Timer{WakeTime: 50}
	tm.Handler = func(*Timer) uint8 {
		fired = true
		return SF_DONE
	}
	other := &Timer{WakeTime: 60}
	other.Handler = func(*Timer) uint8 { return SF_DONE }

	ScheduleTimer(tm)
	ScheduleTimer(other)
	UnscheduleTimer(tm)

	SetTime(100)
	TimerDispatch()

	if fired {
		t.Errorf("Unscheduled timer still fired")
	}

	// Removing a timer that is not scheduled must be harmless.
	UnscheduleTimer(tm)
}

func TestNextWake(t *testing.T) {
	resetSched()

	if _, ok := NextWake(); ok {
		t.Errorf("NextWake reported a timer on an empty schedule")
	}

	tm := &Timer{WakeTime: 42}
	tm.Handler = func(*Timer) uint8 { return SF_DONE }
	ScheduleTimer(tm)

	wake, ok := NextWake()
	if !ok || wake != 42 {
		t.Errorf("Expected next wake 42, got %d (ok=%v)", wake, ok)
	}
}
