//go:build tinygo

// Package easy adapts the easystepper four-wire driver to the step
// backend interface, for unipolar motors (28BYJ-48 and friends) that
// have no step/dir driver IC.
package easy

import (
	"machine"

	"tinygo.org/x/drivers/easystepper"
)

// Backend drives a four-wire stepper one coil sequence per step
// request. The ramp still controls inter-step timing; the driver's
// own RPM pacing only shapes the coil sequence within a single step.
type Backend struct {
	pins      [4]machine.Pin
	stepCount uint
	rpm       uint

	dev     *easystepper.Device
	reverse bool
}

// New creates a backend over four coil pins. stepCount is the motor's
// steps per revolution.
func New(pins [4]machine.Pin, stepCount, rpm uint) *Backend {
	return &Backend{pins: pins, stepCount: stepCount, rpm: rpm}
}

// Init configures the coil outputs. Four-wire motors have no step or
// dir line, so the pin numbers and inversion flags are ignored; the
// direction request arrives through SetDirection instead.
func (b *Backend) Init(stepPin, dirPin uint8, invertStep, invertDir bool) error {
	dev, err := easystepper.New(easystepper.DeviceConfig{
		Pin1:      b.pins[0],
		Pin2:      b.pins[1],
		Pin3:      b.pins[2],
		Pin4:      b.pins[3],
		StepCount: b.stepCount,
		RPM:       b.rpm,
		Mode:      easystepper.ModeFour,
	})
	if err != nil {
		return err
	}
	dev.Configure()
	b.dev = dev
	return nil
}

func (b *Backend) Step() {
	if b.reverse {
		b.dev.Move(-1)
	} else {
		b.dev.Move(1)
	}
}

func (b *Backend) SetDirection(dir bool) {
	b.reverse = dir
}

// Stop de-energizes the coils.
func (b *Backend) Stop() {
	b.dev.Off()
}

func (b *Backend) Name() string {
	return "easystepper"
}
