package core

// StepBackend is the hardware abstraction for step pulse output.
// Implementations can use plain GPIO, PIO state machines, or an
// external driver library.
type StepBackend interface {
	// Init initializes the step and direction outputs.
	// invertStep/invertDir flip the respective signal polarity.
	Init(stepPin, dirPin uint8, invertStep, invertDir bool) error

	// Step emits a single step pulse (rising then falling edge).
	// Called from the timer handler with interrupts masked, so it
	// must be fast and must not block.
	Step()

	// SetDirection sets the direction output.
	// dir: true = reverse, false = forward.
	SetDirection(dir bool)

	// Stop immediately halts pulse output.
	Stop()

	// Name returns the backend implementation name.
	Name() string
}
