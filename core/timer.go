package core

// TimerFreq is the nominal tick rate of the motion clock.
const TimerFreq = 12000000 // 12MHz

// GetTime returns the current time in timer ticks.
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the clock. Called by the platform tick hook, and by
// tests and simulators that drive time by hand.
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// TimerFromUS converts microseconds to timer ticks.
func TimerFromUS(us uint32) uint32 {
	return us * (TimerFreq / 1000000)
}

// TimerToUS converts timer ticks to microseconds.
func TimerToUS(ticks uint32) uint32 {
	return ticks / (TimerFreq / 1000000)
}

// ProcessTimers dispatches all timers due at the current time.
func ProcessTimers() {
	TimerDispatch()
}
