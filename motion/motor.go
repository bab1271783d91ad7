// Package motion implements an interrupt-driven step pulse generator
// with trapezoidal velocity ramping. A move accelerates using the
// incremental recurrence d -= 2d/(4n+1) (the square-root-free
// approximation of the ideal 1/sqrt(n) stepper ramp), cruises at a
// configurable delay floor, then decelerates with the inverse
// recurrence back toward the start delay.
package motion

import (
	"errors"
	"sync/atomic"

	"rampgen/core"
)

// Default ramp delays in timer ticks.
const (
	DefaultStartDelay  = 1600 // first-step delay, sets ramp aggressiveness
	DefaultCruiseDelay = 500  // top-speed delay floor
)

var (
	ErrNilBackend = errors.New("motion: nil step backend")
	ErrBadDelay   = errors.New("motion: ramp delays must be positive")
)

// MotionState is a consistent snapshot of the generator state, taken
// with interrupts masked.
type MotionState struct {
	Direction      int     // +1 or -1, sign of the current move
	StepsCommanded uint32  // total steps requested for this move
	StepsTaken     uint32  // steps emitted so far
	StepPosition   int64   // absolute position, persists across moves
	RampIndex      int32   // ramp step counter n
	StepsToPeak    uint32  // steps spent accelerating, frozen at the peak
	CurrentDelay   float64 // inter-step delay in timer ticks
	CruiseDelay    float64 // delay floor (top speed)
	StartDelay     float64 // first-step delay (c0)
	MovementDone   bool
}

// Motor owns the shared motion state. The command interface (Move,
// MoveTo, Wait) runs in the foreground; the generator runs as a timer
// handler. Both sides take the interrupt mask around the full re-arm
// sequence, so the generator never observes a half-written move.
type Motor struct {
	backend core.StepBackend
	timer   core.Timer

	// Ramp state. Only touched with interrupts masked.
	direction      int32
	stepsCommanded uint32
	stepsTaken     uint32
	rampIndex      int32
	stepsToPeak    uint32
	currentDelay   float64
	cruiseDelay    float64
	startDelay     float64
	accelerating   bool

	position   int64  // atomic: absolute step position
	done       uint32 // atomic: movement-done flag
	degenerate uint32 // atomic: decel recurrence clamp count

	// doneCh is closed by the generator when the move completes.
	// Replaced on every re-arm; only read or swapped with interrupts
	// masked.
	doneCh chan struct{}
}

// NewMotor creates a motor over an initialized step backend.
func NewMotor(backend core.StepBackend, startDelay, cruiseDelay float64) (*Motor, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	if startDelay <= 0 || cruiseDelay <= 0 {
		return nil, ErrBadDelay
	}

	m := &Motor{
		backend:     backend,
		startDelay:  startDelay,
		cruiseDelay: cruiseDelay,
		done:        1,
		doneCh:      make(chan struct{}),
	}
	close(m.doneCh) // no move in flight
	m.timer.Handler = m.tick
	return m, nil
}

// Move arms the generator for a relative move of delta steps and
// returns immediately. Calling Move before a prior move completes
// overwrites the full ramp state; steps already taken remain in the
// position counter.
func (m *Motor) Move(delta int64) {
	state := core.IrqSave()
	defer core.IrqRestore(state)

	core.UnscheduleTimerIrqOff(&m.timer)

	m.direction = 1
	if delta < 0 {
		m.direction = -1
		delta = -delta
	}
	m.stepsCommanded = uint32(delta)
	m.stepsTaken = 0
	m.rampIndex = 0
	m.stepsToPeak = 0
	m.currentDelay = m.startDelay
	m.accelerating = true

	// Direction line is level-encoded per move: high (reverse) for a
	// negative displacement, low otherwise.
	m.backend.SetDirection(m.direction < 0)

	// Release waiters of an overwritten move; they re-check the done
	// flag and block on the fresh channel.
	if atomic.LoadUint32(&m.done) == 0 {
		close(m.doneCh)
	}
	m.doneCh = make(chan struct{})
	atomic.StoreUint32(&m.done, 0)

	m.timer.WakeTime = core.GetTime() + delayTicks(m.currentDelay)
	core.ScheduleTimerIrqOff(&m.timer)

	core.RecordMotion(core.EvtArm, core.GetTime(), m.stepsCommanded, uint32(m.currentDelay))
}

// StartMoveTo arms a move to an absolute position without waiting.
func (m *Motor) StartMoveTo(pos int64) {
	m.Move(pos - m.Position())
}

// MoveTo moves to an absolute position and blocks until the move
// completes. There is no timeout: moves always terminate because the
// commanded step count is finite.
func (m *Motor) MoveTo(pos int64) {
	m.StartMoveTo(pos)
	m.Wait()
}

// Wait blocks until the in-flight move completes. Returns immediately
// when no move is in flight. A move overwritten by a newer Move keeps
// the caller waiting for the newer move.
func (m *Motor) Wait() {
	for {
		state := core.IrqSave()
		ch := m.doneCh
		core.IrqRestore(state)

		if atomic.LoadUint32(&m.done) != 0 {
			return
		}
		<-ch
	}
}

// tick is the generator: one invocation per timer expiry. Runs with
// interrupts masked and in bounded time.
func (m *Motor) tick(t *core.Timer) uint8 {
	if m.stepsTaken >= m.stepsCommanded {
		atomic.StoreUint32(&m.done, 1)
		close(m.doneCh)
		core.RecordMotion(core.EvtDone, t.WakeTime, m.stepsTaken, 0)
		return core.SF_DONE
	}

	m.backend.Step()
	m.stepsTaken++
	atomic.AddInt64(&m.position, int64(m.direction))

	switch {
	case m.accelerating:
		m.rampIndex++
		m.stepsToPeak++
		m.currentDelay -= (2 * m.currentDelay) / float64(4*m.rampIndex+1)
		if m.currentDelay <= m.cruiseDelay {
			// Speed cap reached: clamp and freeze the ramp.
			m.currentDelay = m.cruiseDelay
			m.stepsToPeak = m.stepsTaken
			m.accelerating = false
			core.RecordMotion(core.EvtRampFreeze, t.WakeTime, m.stepsToPeak, uint32(m.currentDelay))
		} else if m.stepsToPeak >= m.stepsCommanded/2 {
			// Midpoint reached first: freeze so a short move always
			// has room to decelerate.
			m.stepsToPeak = m.stepsTaken
			m.accelerating = false
			core.RecordMotion(core.EvtRampFreeze, t.WakeTime, m.stepsToPeak, uint32(m.currentDelay))
		}

	case m.stepsCommanded-m.stepsTaken <= m.stepsToPeak:
		// Deceleration: walk the ramp index back down; the inverse
		// recurrence grows the delay back toward the start delay.
		if m.stepsCommanded-m.stepsTaken == m.stepsToPeak {
			core.RecordMotion(core.EvtDecel, t.WakeTime, m.stepsTaken, uint32(m.currentDelay))
		}
		m.rampIndex--
		if m.rampIndex <= 0 {
			// 4n+1 <= 1 drives the divisor non-positive. Clamp to the
			// start delay instead of propagating a negative delay.
			m.currentDelay = m.startDelay
			atomic.AddUint32(&m.degenerate, 1)
			core.RecordMotion(core.EvtDegenerate, t.WakeTime, m.stepsTaken, uint32(m.currentDelay))
		} else {
			m.currentDelay /= 1 - 2/float64(4*m.rampIndex+1)
		}

	default:
		// Cruise: hold the delay at the floor.
	}

	core.RecordMotion(core.EvtStep, t.WakeTime, m.stepsTaken, uint32(m.currentDelay))

	t.WakeTime += delayTicks(m.currentDelay)
	return core.SF_RESCHEDULE
}

// delayTicks converts a ramp delay to a timer compare value, keeping
// it strictly positive.
func delayTicks(d float64) uint32 {
	if d < 1 {
		return 1
	}
	return uint32(d)
}

// Position returns the absolute step position.
func (m *Motor) Position() int64 {
	return atomic.LoadInt64(&m.position)
}

// Done reports whether the last commanded move has completed.
func (m *Motor) Done() bool {
	return atomic.LoadUint32(&m.done) != 0
}

// DegenerateClamps returns how many times the deceleration recurrence
// was clamped. Diagnostic only; a symmetric ramp routinely clamps on
// its final step.
func (m *Motor) DegenerateClamps() uint32 {
	return atomic.LoadUint32(&m.degenerate)
}

// State returns a consistent snapshot of the motion state.
func (m *Motor) State() MotionState {
	state := core.IrqSave()
	defer core.IrqRestore(state)

	return MotionState{
		Direction:      int(m.direction),
		StepsCommanded: m.stepsCommanded,
		StepsTaken:     m.stepsTaken,
		StepPosition:   atomic.LoadInt64(&m.position),
		RampIndex:      m.rampIndex,
		StepsToPeak:    m.stepsToPeak,
		CurrentDelay:   m.currentDelay,
		CruiseDelay:    m.cruiseDelay,
		StartDelay:     m.startDelay,
		MovementDone:   atomic.LoadUint32(&m.done) != 0,
	}
}

// SetCruiseDelay adjusts the cruise-phase delay floor. Takes effect
// on the next move.
func (m *Motor) SetCruiseDelay(d float64) error {
	if d <= 0 {
		return ErrBadDelay
	}
	state := core.IrqSave()
	defer core.IrqRestore(state)
	m.cruiseDelay = d
	return nil
}

// SetStartDelay adjusts the first-step delay. Takes effect on the
// next move.
func (m *Motor) SetStartDelay(d float64) error {
	if d <= 0 {
		return ErrBadDelay
	}
	state := core.IrqSave()
	defer core.IrqRestore(state)
	m.startDelay = d
	return nil
}
