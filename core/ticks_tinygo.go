//go:build tinygo

package core

import (
	"runtime/interrupt"
	"sync/atomic"
)

// IrqState is the saved interrupt mask.
type IrqState = interrupt.State

// IrqSave masks interrupts and returns the previous state.
func IrqSave() IrqState {
	return interrupt.Disable()
}

// IrqRestore restores the interrupt mask.
func IrqRestore(state IrqState) {
	interrupt.Restore(state)
}

var systemTicks uint32

func getSystemTicks() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

func setSystemTicks(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}
