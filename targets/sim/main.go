//go:build !tinygo

// Command sim runs the step generator against an in-memory GPIO
// driver and prints the resulting velocity profile. Useful for
// checking ramp parameters before flashing hardware.
package main

import (
	"flag"
	"fmt"
	"os"

	"rampgen/core"
	"rampgen/motion"
)

func main() {
	startDelay := flag.Float64("start-delay", motion.DefaultStartDelay, "first-step delay in timer ticks")
	cruiseDelay := flag.Float64("cruise-delay", motion.DefaultCruiseDelay, "top-speed delay floor in timer ticks")
	steps := flag.Int64("steps", 1600, "steps for the out-and-back cycle")
	flag.Parse()

	core.SetGPIODriver(core.NewMemGPIO())
	core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
	core.SetDebugEnabled(true)

	backend := core.NewGPIOBackend()
	backend.PulseHold = 0 // no hardware to satisfy
	if err := backend.Init(2, 3, false, false); err != nil {
		fmt.Fprintln(os.Stderr, "backend init:", err)
		os.Exit(1)
	}

	motor, err := motion.NewMotor(backend, *startDelay, *cruiseDelay)
	if err != nil {
		fmt.Fprintln(os.Stderr, "motor:", err)
		os.Exit(1)
	}

	core.SetTime(0)
	for _, target := range []int64{*steps, -*steps, 0} {
		motor.StartMoveTo(target)
		runMove(motor)

		st := motor.State()
		fmt.Printf("target=%d pos=%d taken=%d peak_steps=%d final_delay=%.1f\n",
			target, motor.Position(), st.StepsTaken, st.StepsToPeak, st.CurrentDelay)
	}

	fmt.Printf("degenerate_clamps=%d\n", motor.DegenerateClamps())
	core.DumpMotionRing()
}

// runMove pumps the timer schedule to completion, tracking the
// fastest inter-step delay seen.
func runMove(m *motion.Motor) {
	var lastWake uint32
	minDelay := ^uint32(0)
	first := true

	for !m.Done() {
		wake, ok := core.NextWake()
		if !ok {
			fmt.Fprintln(os.Stderr, "generator idle with move in flight")
			os.Exit(1)
		}
		if !first && wake-lastWake < minDelay {
			minDelay = wake - lastWake
		}
		first = false
		lastWake = wake

		core.SetTime(wake)
		core.TimerDispatch()
	}

	if minDelay != ^uint32(0) {
		fmt.Printf("  min_delay=%d ticks\n", minDelay)
	}
}
