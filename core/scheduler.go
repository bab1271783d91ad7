package core

// Timer is an event on the shared schedule. Handlers run with
// interrupts masked and must complete in bounded time: no blocking
// calls, no unbounded loops.
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer
}

// Handler return codes.
const (
	SF_DONE       = 0 // timer is finished, remove from schedule
	SF_RESCHEDULE = 1 // re-insert at the updated WakeTime
)

var timerList *Timer

// ScheduleTimer adds a timer to the schedule, masking interrupts
// around the list insert.
func ScheduleTimer(t *Timer) {
	state := IrqSave()
	defer IrqRestore(state)
	insertTimer(t)
}

// ScheduleTimerIrqOff adds a timer when the caller already holds the
// interrupt mask (re-arm sequences, handlers).
func ScheduleTimerIrqOff(t *Timer) {
	insertTimer(t)
}

// UnscheduleTimer removes a timer from the schedule if present.
func UnscheduleTimer(t *Timer) {
	state := IrqSave()
	defer IrqRestore(state)
	removeTimer(t)
}

// UnscheduleTimerIrqOff removes a timer when the caller already holds
// the interrupt mask.
func UnscheduleTimerIrqOff(t *Timer) {
	removeTimer(t)
}

// insertTimer inserts a timer in sorted order by WakeTime.
func insertTimer(t *Timer) {
	if timerList == nil || t.WakeTime < timerList.WakeTime {
		t.Next = timerList
		timerList = t
		return
	}
	pos := timerList
	for pos.Next != nil && pos.Next.WakeTime < t.WakeTime {
		pos = pos.Next
	}
	t.Next = pos.Next
	pos.Next = t
}

// removeTimer unlinks a timer from the list. A timer that is not
// scheduled is left untouched.
func removeTimer(t *Timer) {
	if timerList == nil {
		return
	}
	if timerList == t {
		timerList = t.Next
		t.Next = nil
		return
	}
	for pos := timerList; pos.Next != nil; pos = pos.Next {
		if pos.Next == t {
			pos.Next = t.Next
			t.Next = nil
			return
		}
	}
}

// TimerDispatch runs every timer whose WakeTime has been reached.
// Handlers returning SF_RESCHEDULE are re-inserted at their updated
// WakeTime; SF_DONE timers are dropped from the schedule.
func TimerDispatch() {
	state := IrqSave()
	defer IrqRestore(state)

	for timerList != nil && timerList.WakeTime <= GetTime() {
		t := timerList
		timerList = t.Next
		t.Next = nil

		if t.Handler(t) == SF_RESCHEDULE {
			insertTimer(t)
		}
	}
}

// NextWake reports the earliest scheduled wake time. ok is false when
// the schedule is empty.
func NextWake() (wake uint32, ok bool) {
	state := IrqSave()
	defer IrqRestore(state)
	if timerList == nil {
		return 0, false
	}
	return timerList.WakeTime, true
}

// TimersPending reports whether any timer is armed.
func TimersPending() bool {
	state := IrqSave()
	defer IrqRestore(state)
	return timerList != nil
}

// ResetTimers clears the schedule. For tests and target bring-up only.
func ResetTimers() {
	state := IrqSave()
	defer IrqRestore(state)
	for timerList != nil {
		t := timerList
		timerList = t.Next
		t.Next = nil
	}
}
