// Package device runs the controller side of the wire protocol: it
// reads command frames from the transport, dispatches them through
// the command registry, acknowledges every frame, and pumps the
// timer schedule between reads.
package device

import (
	"errors"
	"io"

	"rampgen/core"
	"rampgen/motion"
	"rampgen/protocol"
)

// Device binds a transport to the command registry.
type Device struct {
	port io.ReadWriter
	dec  *protocol.Decoder
	seq  uint8 // next expected host sequence
}

// New creates a device loop over a transport and wires the motion
// response sink to it.
func New(port io.ReadWriter) *Device {
	d := &Device{
		port: port,
		dec:  protocol.NewDecoder(),
		seq:  protocol.DestBits,
	}
	motion.SetResponder(d.Respond)
	return d
}

// Respond encodes and transmits a response frame by command name.
// Unregistered names are dropped; response emission is best-effort.
func (d *Device) Respond(name string, args ...int32) {
	id, ok := core.LookupCommandID(name)
	if !ok {
		return
	}

	payload := protocol.AppendVLQUint(nil, uint32(id))
	for _, a := range args {
		payload = protocol.AppendVLQInt(payload, a)
	}

	msg, err := protocol.EncodeFrame(d.seq, payload)
	if err != nil {
		return
	}
	_, _ = d.port.Write(msg)
}

// Poll reads pending transport bytes, handles complete frames, and
// dispatches due timers. Call it from the main loop; it never blocks
// beyond the transport's own read timeout.
func (d *Device) Poll() error {
	var tmp [protocol.FrameLengthMax]byte
	n, err := d.port.Read(tmp[:])
	if n > 0 {
		d.dec.Write(tmp[:n])
		for {
			f, ok := d.dec.Next()
			if !ok {
				break
			}
			d.handleFrame(f)
		}
	}

	core.ProcessTimers()

	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Run polls until stop is closed.
func (d *Device) Run(stop <-chan struct{}) error {
	for {
		select {
		case <-stop:
			return nil
		default:
		}
		if err := d.Poll(); err != nil {
			return err
		}
	}
}

// handleFrame dispatches an in-sequence frame and acks every frame.
// Out-of-sequence frames are dropped; the ack names the expected
// sequence so the host retransmits.
func (d *Device) handleFrame(f protocol.Frame) {
	if f.Seq == d.seq {
		d.seq = protocol.NextSeq(d.seq)
		data := f.Payload
		for len(data) > 0 {
			id, err := protocol.DecodeVLQUint(&data)
			if err != nil {
				break
			}
			if err := core.DispatchCommand(uint16(id), &data); err != nil {
				core.DebugPrintln("[DEVICE] command failed: " + err.Error())
				break
			}
		}
	}
	_, _ = d.port.Write(protocol.EncodeAck(d.seq))
}
