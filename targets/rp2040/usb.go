//go:build rp2040 || rp2350

package main

import (
	"io"
	"machine"
)

// InitUSB configures the USB CDC serial port. On RP2040
// machine.Serial is USB CDC, not a hardware UART; the descriptors are
// set by the runtime.
func InitUSB() {
	_ = machine.Serial.Configure(machine.UARTConfig{})
}

// usbPort adapts machine.Serial to the io.ReadWriter the device loop
// expects. Reads drain whatever is buffered and report io.EOF when
// idle, which the poll loop treats as "nothing yet".
type usbPort struct{}

func (usbPort) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) && machine.Serial.Buffered() > 0 {
		c, err := machine.Serial.ReadByte()
		if err != nil {
			break
		}
		b[n] = c
		n++
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (usbPort) Write(b []byte) (int, error) {
	return machine.Serial.Write(b)
}
