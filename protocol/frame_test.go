package protocol

import (
	"bytes"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	payload := AppendVLQUint(nil, 2)
	payload = AppendVLQInt(payload, -1600)

	msg, err := EncodeFrame(DestBits, payload)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	dec := NewDecoder()
	dec.Write(msg)
	f, ok := dec.Next()
	if !ok {
		t.Fatalf("Decoder did not yield a frame")
	}
	if f.Seq != DestBits {
		t.Errorf("Sequence mismatch: got %#02x", f.Seq)
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Errorf("Payload mismatch: got %v, expected %v", f.Payload, payload)
	}
}

func TestFrameTooLong(t *testing.T) {
	if _, err := EncodeFrame(DestBits, make([]byte, FrameLengthMax)); err != ErrFrameTooLong {
		t.Errorf("Expected ErrFrameTooLong, got %v", err)
	}
}

func TestAckFrameIsEmpty(t *testing.T) {
	dec := NewDecoder()
	dec.Write(EncodeAck(DestBits | 0x03))

	f, ok := dec.Next()
	if !ok {
		t.Fatalf("Ack frame not decoded")
	}
	if len(f.Payload) != 0 {
		t.Errorf("Ack payload not empty: %v", f.Payload)
	}
	if f.Seq != (DestBits | 0x03) {
		t.Errorf("Ack sequence mismatch: %#02x", f.Seq)
	}
}

func TestDecoderByteAtATime(t *testing.T) {
	msg, _ := EncodeFrame(DestBits|0x01, []byte{1, 2, 3})

	dec := NewDecoder()
	for i, b := range msg {
		dec.Write([]byte{b})
		_, ok := dec.Next()
		if i < len(msg)-1 && ok {
			t.Fatalf("Frame yielded early at byte %d", i)
		}
		if i == len(msg)-1 && !ok {
			t.Fatalf("Frame not yielded after final byte")
		}
	}
}

func TestDecoderResyncAfterGarbage(t *testing.T) {
	good, _ := EncodeFrame(DestBits, []byte{9})

	dec := NewDecoder()
	// A corrupt length byte forces a desync; the decoder must recover
	// at the next sync byte and decode the following frame.
	dec.Write([]byte{0xFF, 0x55, 0xAA, SyncByte})
	dec.Write(good)

	f, ok := dec.Next()
	if !ok {
		t.Fatalf("Decoder did not recover after garbage")
	}
	if !bytes.Equal(f.Payload, []byte{9}) {
		t.Errorf("Recovered frame payload mismatch: %v", f.Payload)
	}
}

func TestDecoderRejectsBadCRC(t *testing.T) {
	msg, _ := EncodeFrame(DestBits, []byte{1, 2})
	msg[2] ^= 0x01 // flip a payload bit, CRC now stale

	good, _ := EncodeFrame(DestBits|0x01, []byte{7})

	dec := NewDecoder()
	dec.Write(msg)
	dec.Write(good)

	f, ok := dec.Next()
	if !ok {
		t.Fatalf("Decoder did not recover after CRC failure")
	}
	if !bytes.Equal(f.Payload, []byte{7}) {
		t.Errorf("Expected the follow-up frame, got payload %v", f.Payload)
	}
}

func TestDecoderSkipsIdleSyncBytes(t *testing.T) {
	msg, _ := EncodeFrame(DestBits, []byte{4})

	dec := NewDecoder()
	dec.Write([]byte{SyncByte, SyncByte})
	dec.Write(msg)

	if _, ok := dec.Next(); !ok {
		t.Fatalf("Frame after idle sync bytes not decoded")
	}
}

func TestNextSeqWraps(t *testing.T) {
	if got := NextSeq(DestBits | 0x0F); got != DestBits {
		t.Errorf("NextSeq wrap: got %#02x, expected %#02x", got, DestBits)
	}
	if got := NextSeq(DestBits); got != DestBits|0x01 {
		t.Errorf("NextSeq increment: got %#02x", got)
	}
}
