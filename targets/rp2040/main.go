//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"rampgen/device"
	"rampgen/motion"
	piostepper "rampgen/targets/pio"
)

// ledBlink signals boot progress on boards without a debug probe.
func ledBlink(count int) {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for i := 0; i < count; i++ {
		led.High()
		time.Sleep(150 * time.Millisecond)
		led.Low()
		time.Sleep(150 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)
}

func main() {
	InitUSB()

	// Clear any watchdog state left over from a previous reset.
	_ = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	InitClock()

	motion.InitMotionCommands()
	piostepper.Setup()

	ledBlink(2)

	dev := device.New(usbPort{})
	for {
		UpdateSystemTime()
		_ = dev.Poll()
		time.Sleep(10 * time.Microsecond)
	}
}
