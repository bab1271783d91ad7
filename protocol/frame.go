package protocol

import (
	"bytes"
	"errors"
)

// Frame layout: [length, sequence, payload..., crc hi, crc lo, sync].
// Length covers the whole frame. The sequence byte carries a 4-bit
// counter in its low nibble and fixed destination bits in the high
// nibble.
const (
	FrameHeaderSize  = 2
	FrameTrailerSize = 3
	FrameLengthMin   = FrameHeaderSize + FrameTrailerSize
	FrameLengthMax   = 64

	SyncByte = 0x7E
	SeqMask  = 0x0F
	DestBits = 0x10
)

var ErrFrameTooLong = errors.New("protocol: payload exceeds frame limit")

// Frame is a decoded wire frame. An empty payload is an ack.
type Frame struct {
	Seq     uint8
	Payload []byte
}

// NextSeq returns the sequence value following seq, preserving the
// destination bits.
func NextSeq(seq uint8) uint8 {
	return ((seq + 1) & SeqMask) | DestBits
}

// EncodeFrame builds a complete frame around payload.
func EncodeFrame(seq uint8, payload []byte) ([]byte, error) {
	if len(payload) > FrameLengthMax-FrameLengthMin {
		return nil, ErrFrameTooLong
	}
	msg := make([]byte, 0, len(payload)+FrameLengthMin)
	msg = append(msg, byte(len(payload)+FrameLengthMin), seq)
	msg = append(msg, payload...)
	crc := CRC16(msg)
	msg = append(msg, byte(crc>>8), byte(crc), SyncByte)
	return msg, nil
}

// EncodeAck builds the minimal frame acknowledging receipt and naming
// the next expected sequence.
func EncodeAck(nextSeq uint8) []byte {
	msg, _ := EncodeFrame(nextSeq, nil)
	return msg
}

// Decoder consumes a byte stream and yields complete frames. After
// corruption it discards input until the next sync byte.
type Decoder struct {
	buf    []byte
	synced bool
}

// NewDecoder returns a decoder that starts synchronized, matching a
// link that begins idle.
func NewDecoder() *Decoder {
	return &Decoder{synced: true}
}

// Write appends raw bytes from the link.
func (d *Decoder) Write(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next returns the next complete frame. ok is false when more input
// is needed.
func (d *Decoder) Next() (f Frame, ok bool) {
	for {
		if !d.synced {
			idx := bytes.IndexByte(d.buf, SyncByte)
			if idx < 0 {
				d.buf = d.buf[:0]
				return Frame{}, false
			}
			d.buf = d.buf[idx+1:]
			d.synced = true
		}

		// Skip idle sync bytes between frames.
		for len(d.buf) > 0 && d.buf[0] == SyncByte {
			d.buf = d.buf[1:]
		}
		if len(d.buf) < FrameLengthMin {
			return Frame{}, false
		}

		msgLen := int(d.buf[0])
		if msgLen < FrameLengthMin || msgLen > FrameLengthMax {
			d.synced = false
			continue
		}
		if d.buf[1]&^SeqMask != DestBits {
			d.synced = false
			continue
		}
		if len(d.buf) < msgLen {
			return Frame{}, false
		}
		if d.buf[msgLen-1] != SyncByte {
			d.synced = false
			continue
		}
		want := uint16(d.buf[msgLen-3])<<8 | uint16(d.buf[msgLen-2])
		if CRC16(d.buf[:msgLen-3]) != want {
			d.synced = false
			continue
		}

		f = Frame{
			Seq:     d.buf[1],
			Payload: append([]byte(nil), d.buf[FrameHeaderSize:msgLen-FrameTrailerSize]...),
		}
		d.buf = d.buf[msgLen:]
		return f, true
	}
}
