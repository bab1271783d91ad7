//go:build rp2040 || rp2350

package pio

import (
	"rampgen/core"
	"rampgen/motion"
)

// Two PIO blocks with four state machines each.
var (
	claimed [2][4]bool
	nextPIO uint8
	nextSM  uint8
)

// Setup wires the PIO backend factory into the motion command
// surface. Each config_stepper claims the next free state machine;
// once all eight are taken, new steppers fall back to SIO.
func Setup() {
	motion.SetBackendFactory(func() core.StepBackend {
		pioNum, smNum, ok := allocate()
		if !ok {
			return NewSIOBackend()
		}
		return NewBackend(pioNum, smNum)
	})
}

// allocate hands out state machines round-robin across both blocks.
func allocate() (uint8, uint8, bool) {
	for i := 0; i < 8; i++ {
		pioNum, smNum := nextPIO, nextSM

		nextSM++
		if nextSM >= 4 {
			nextSM = 0
			nextPIO = (nextPIO + 1) % 2
		}

		if !claimed[pioNum][smNum] {
			claimed[pioNum][smNum] = true
			return pioNum, smNum, true
		}
	}
	return 0, 0, false
}
