//go:build rp2040 || rp2350

// Package pio provides RP2040/RP2350 step pulse backends: a PIO state
// machine for hardware-timed pulses and a direct-SIO fallback.
package pio

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// buildPulseProgram assembles the step pulse PIO program. One FIFO
// word produces exactly one pulse, so the scheduler keeps full control
// of inter-step timing while the PIO guarantees the pulse width.
//
//	0: pull block        ; wait for a pulse request
//	1: set pins, 1 [7]   ; step high, 8 cycles wide
//	2: set pins, 0       ; step low
func buildPulseProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		asm.Pull(false, true).Encode(),
		asm.Set(rp2pio.SetDestPins, 1).Delay(7).Encode(),
		asm.Set(rp2pio.SetDestPins, 0).Encode(),
	}
}

// Load at offset 0 so jump targets need no relocation.
const pulseProgramOrigin = 0

// Backend generates step pulses from a PIO state machine. The
// direction line is a plain GPIO output; it only changes between
// moves, long before the next pulse.
type Backend struct {
	pio       *rp2pio.PIO
	sm        rp2pio.StateMachine
	stepPin   machine.Pin
	dirPin    machine.Pin
	invertDir bool
	offset    uint8
}

// NewBackend creates a backend on the given PIO block (0 or 1) and
// state machine (0-3).
func NewBackend(pioNum, smNum uint8) *Backend {
	hw := rp2pio.PIO0
	if pioNum != 0 {
		hw = rp2pio.PIO1
	}
	return &Backend{
		pio: hw,
		sm:  hw.StateMachine(smNum),
	}
}

func (b *Backend) Init(stepPin, dirPin uint8, invertStep, invertDir bool) error {
	b.stepPin = machine.Pin(stepPin)
	b.dirPin = machine.Pin(dirPin)
	b.invertDir = invertDir

	b.sm.TryClaim()

	program := buildPulseProgram()
	offset, err := b.pio.AddProgram(program, pulseProgramOrigin)
	if err != nil {
		return err
	}
	b.offset = offset

	b.stepPin.Configure(machine.PinConfig{Mode: b.pio.PinMode()})
	b.dirPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(b.stepPin, 1)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1, 0)

	b.sm.Init(offset, cfg)

	// Pin directions must be set after Init.
	b.sm.SetPindirsConsecutive(b.stepPin, 1, true)
	b.sm.SetPinsConsecutive(b.stepPin, 1, false)

	b.dirPin.Low()
	if invertDir {
		b.dirPin.High()
	}

	b.sm.SetEnabled(true)
	return nil
}

// Step requests one pulse. The FIFO is four entries deep and drains in
// a handful of cycles, so the wait never stalls the timer handler.
func (b *Backend) Step() {
	for b.sm.IsTxFIFOFull() {
	}
	b.sm.TxPut(1)
}

func (b *Backend) SetDirection(dir bool) {
	level := dir
	if b.invertDir {
		level = !level
	}
	b.dirPin.Set(level)
}

// Stop discards queued pulses and leaves the step line low.
func (b *Backend) Stop() {
	b.sm.SetEnabled(false)
	b.sm.ClearFIFOs()
	b.sm.Restart()
	b.sm.SetPinsConsecutive(b.stepPin, 1, false)
	b.sm.SetEnabled(true)
}

func (b *Backend) Name() string {
	return "pio"
}
