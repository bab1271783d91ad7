//go:build !tinygo

package core

import (
	"sync"
	"sync/atomic"
)

// IrqState is the saved interrupt mask. Host builds model the mask
// with a mutex so tests and simulators can drive the scheduler and
// the command surface from separate goroutines.
type IrqState uintptr

var irqMu sync.Mutex

// IrqSave masks interrupts and returns the previous state.
func IrqSave() IrqState {
	irqMu.Lock()
	return 0
}

// IrqRestore restores the interrupt mask.
func IrqRestore(state IrqState) {
	irqMu.Unlock()
}

var systemTicks uint32

func getSystemTicks() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

func setSystemTicks(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}
