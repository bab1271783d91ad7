package core

// MemGPIO is an in-memory GPIODriver for host simulation and tests.
// It records every level written to each pin so step pulses can be
// inspected after the fact.
type MemGPIO struct {
	levels map[GPIOPin]bool
	writes map[GPIOPin]int
}

// NewMemGPIO creates an empty in-memory GPIO driver.
func NewMemGPIO() *MemGPIO {
	return &MemGPIO{
		levels: make(map[GPIOPin]bool),
		writes: make(map[GPIOPin]int),
	}
}

func (m *MemGPIO) ConfigureOutput(pin GPIOPin) error {
	m.levels[pin] = false
	return nil
}

func (m *MemGPIO) SetPin(pin GPIOPin, value bool) error {
	m.levels[pin] = value
	m.writes[pin]++
	return nil
}

func (m *MemGPIO) GetPin(pin GPIOPin) (bool, error) {
	return m.levels[pin], nil
}

// Writes returns how many times a pin level has been written.
func (m *MemGPIO) Writes(pin GPIOPin) int {
	return m.writes[pin]
}
