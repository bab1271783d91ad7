// Package host implements the host side of the motion control
// protocol: framing commands by name, sequence tracking, and waiting
// for acks and responses.
package host

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"rampgen/core"
	"rampgen/protocol"
)

// DefaultTimeout bounds how long the link waits for an ack or a
// response frame.
const DefaultTimeout = 2 * time.Second

var (
	ErrTimeout        = errors.New("host: timed out waiting for device")
	ErrUnknownCommand = errors.New("host: command not in registry")
)

// Link frames commands over a transport and tracks the shared
// sequence counter. Safe for use from one goroutine at a time per
// operation; concurrent Send calls are serialized.
type Link struct {
	mu      sync.Mutex
	port    io.ReadWriter
	dec     *protocol.Decoder
	seq     uint8
	Timeout time.Duration
}

// NewLink creates a link over an open transport. The command table
// must already be registered (motion.InitMotionCommands) so names
// resolve to wire IDs.
func NewLink(port io.ReadWriter) *Link {
	return &Link{
		port:    port,
		dec:     protocol.NewDecoder(),
		seq:     protocol.DestBits,
		Timeout: DefaultTimeout,
	}
}

// Send transmits a command by name and waits for the ack.
func (l *Link) Send(name string, args ...int32) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.roundTrip(name, false, args)
	return err
}

// Query transmits a command and waits for a response frame, returning
// its decoded VLQ arguments (response command ID first).
func (l *Link) Query(name string, args ...int32) ([]int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.roundTrip(name, true, args)
}

func (l *Link) roundTrip(name string, wantResponse bool, args []int32) ([]int32, error) {
	id, ok := core.LookupCommandID(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	payload := protocol.AppendVLQUint(nil, uint32(id))
	for _, a := range args {
		payload = protocol.AppendVLQInt(payload, a)
	}

	msg, err := protocol.EncodeFrame(l.seq, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s frame: %w", name, err)
	}
	if _, err := l.port.Write(msg); err != nil {
		return nil, fmt.Errorf("failed to write %s frame: %w", name, err)
	}

	next := protocol.NextSeq(l.seq)
	deadline := time.Now().Add(l.Timeout)

	acked := false
	var response []int32

	for {
		f, err := l.readFrame(deadline)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		if len(f.Payload) == 0 {
			// Ack naming the next expected sequence.
			if f.Seq == next {
				acked = true
				l.seq = next
			}
		} else if response == nil {
			response, err = decodeArgs(f.Payload)
			if err != nil {
				return nil, fmt.Errorf("%s: bad response frame: %w", name, err)
			}
		}

		if acked && (!wantResponse || response != nil) {
			return response, nil
		}
	}
}

// readFrame pulls transport bytes until a complete frame arrives or
// the deadline passes. Relies on the port's read timeout to keep the
// loop live.
func (l *Link) readFrame(deadline time.Time) (protocol.Frame, error) {
	var tmp [protocol.FrameLengthMax]byte
	for {
		if f, ok := l.dec.Next(); ok {
			return f, nil
		}
		if time.Now().After(deadline) {
			return protocol.Frame{}, ErrTimeout
		}

		n, err := l.port.Read(tmp[:])
		if n > 0 {
			l.dec.Write(tmp[:n])
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return protocol.Frame{}, err
		}
		// Idle read (timeout or EOF with no data); back off briefly.
		time.Sleep(time.Millisecond)
	}
}

// decodeArgs decodes every VLQ integer in a response payload.
func decodeArgs(payload []byte) ([]int32, error) {
	var out []int32
	data := payload
	for len(data) > 0 {
		v, err := protocol.DecodeVLQInt(&data)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
