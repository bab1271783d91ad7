//go:build rp2040 || rp2350

package main

import (
	"runtime/volatile"
	"unsafe"

	"rampgen/core"
)

// RP2040 timer peripheral: free-running 64-bit microsecond counter.
// The raw registers skip the latched read path so repeated low-word
// reads never block each other.
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08
	timerTIMERAWL = timerBase + 0x0C
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// InitClock warms up the hardware timer after the runtime's clock
// bring-up. The counter runs at 1MHz.
func InitClock() {
	_ = timerRAWL.Get()
	_ = timerRAWL.Get()
}

// GetHardwareTime reads the low 32 bits of the microsecond counter.
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// GetHardwareUptime reads the full 64-bit counter, retrying across a
// low-word rollover.
func GetHardwareUptime() uint64 {
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()
		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}

// UpdateSystemTime feeds the hardware counter into the scheduler
// clock. Called once per main-loop iteration.
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}
