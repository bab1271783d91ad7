//go:build rp2040 || rp2350

package pio

import (
	"device/arm"
	"device/rp"
	"machine"
)

// SIOBackend drives the step and direction lines through the RP2040
// single-cycle I/O block. Fallback for boards where all PIO state
// machines are spoken for.
type SIOBackend struct {
	stepPin machine.Pin
	dirPin  machine.Pin

	stepHighMask uint32
	stepLowMask  uint32
	dirHighMask  uint32
	dirLowMask   uint32
}

// NewSIOBackend creates an unconfigured SIO step backend.
func NewSIOBackend() *SIOBackend {
	return &SIOBackend{}
}

func (b *SIOBackend) Init(stepPin, dirPin uint8, invertStep, invertDir bool) error {
	b.stepPin = machine.Pin(stepPin)
	b.dirPin = machine.Pin(dirPin)

	b.stepPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	b.dirPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	// Inversion is folded into the masks so Step stays branch-free.
	b.stepHighMask = 1 << stepPin
	b.stepLowMask = 1 << stepPin
	b.dirHighMask = 1 << dirPin
	b.dirLowMask = 1 << dirPin
	if invertStep {
		b.stepHighMask, b.stepLowMask = b.stepLowMask, b.stepHighMask
	}
	if invertDir {
		b.dirHighMask, b.dirLowMask = b.dirLowMask, b.dirHighMask
	}

	// Idle levels: step inactive, direction forward.
	rp.SIO.GPIO_OUT_CLR.Set(b.stepLowMask)
	rp.SIO.GPIO_OUT_CLR.Set(b.dirLowMask)
	return nil
}

// Step emits one pulse. 13 NOPs hold the line high for roughly 100ns
// at 125MHz, the minimum most driver ICs accept.
func (b *SIOBackend) Step() {
	rp.SIO.GPIO_OUT_SET.Set(b.stepHighMask)
	arm.Asm("nop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop\nnop")
	rp.SIO.GPIO_OUT_CLR.Set(b.stepLowMask)
}

func (b *SIOBackend) SetDirection(dir bool) {
	if dir {
		rp.SIO.GPIO_OUT_SET.Set(b.dirHighMask)
	} else {
		rp.SIO.GPIO_OUT_CLR.Set(b.dirLowMask)
	}
	// Direction-to-step setup time for TMC-style drivers.
	arm.Asm("nop\nnop\nnop")
}

func (b *SIOBackend) Stop() {
	rp.SIO.GPIO_OUT_CLR.Set(b.stepLowMask)
}

func (b *SIOBackend) Name() string {
	return "sio"
}
