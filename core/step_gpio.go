package core

// GPIOBackend emits step pulses through the registered GPIO driver.
// Portable across any platform with a GPIODriver; the PIO backend is
// preferred on RP2040 for jitter-free pulses.
type GPIOBackend struct {
	stepPin    GPIOPin
	dirPin     GPIOPin
	invertStep bool
	invertDir  bool
	direction  bool

	// PulseHold is a busy-loop count for the high phase of the step
	// pulse. Stepper drivers typically need 2us or more.
	PulseHold int
}

// NewGPIOBackend creates an unconfigured GPIO step backend.
func NewGPIOBackend() *GPIOBackend {
	return &GPIOBackend{PulseHold: 300}
}

func (b *GPIOBackend) Init(stepPin, dirPin uint8, invertStep, invertDir bool) error {
	b.stepPin = GPIOPin(stepPin)
	b.dirPin = GPIOPin(dirPin)
	b.invertStep = invertStep
	b.invertDir = invertDir

	gpio := MustGPIO()
	if err := gpio.ConfigureOutput(b.stepPin); err != nil {
		return err
	}
	if err := gpio.ConfigureOutput(b.dirPin); err != nil {
		return err
	}

	// Step line idle, direction forward.
	if err := gpio.SetPin(b.stepPin, b.invertStep); err != nil {
		return err
	}
	b.SetDirection(false)
	return nil
}

func (b *GPIOBackend) Step() {
	gpio := MustGPIO()
	_ = gpio.SetPin(b.stepPin, !b.invertStep)
	for i := 0; i < b.PulseHold; i++ {
		// hold the pulse high
	}
	_ = gpio.SetPin(b.stepPin, b.invertStep)
}

func (b *GPIOBackend) SetDirection(dir bool) {
	b.direction = dir
	level := dir
	if b.invertDir {
		level = !level
	}
	_ = MustGPIO().SetPin(b.dirPin, level)
}

func (b *GPIOBackend) Stop() {
	_ = MustGPIO().SetPin(b.stepPin, b.invertStep)
}

func (b *GPIOBackend) Name() string {
	return "GPIO"
}
