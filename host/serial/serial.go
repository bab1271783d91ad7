// Package serial provides the host-side serial transport.
package serial

import (
	"io"
)

// Port is the serial port interface used by the host link. The
// abstraction keeps a seam for mock transports in tests and for
// alternative implementations.
type Port interface {
	io.ReadWriteCloser

	// Flush discards any buffered data.
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g. "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (USB CDC devices ignore this)
	Baud int

	// Read timeout in milliseconds. Must be non-zero: the host link
	// polls the port and relies on reads returning.
	ReadTimeout int
}

// DefaultConfig returns the standard configuration for a device path.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        250000,
		ReadTimeout: 100,
	}
}
