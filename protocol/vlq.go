// Package protocol implements the compact binary wire format used
// between the host and the motion controller: variable-length
// integers, CRC16 integrity, and sync-byte framing.
package protocol

import "errors"

var (
	ErrTruncated = errors.New("protocol: truncated VLQ value")
)

// AppendVLQInt appends the variable-length encoding of a signed
// integer: 7 bits per byte, most significant group first, high bit
// marking continuation, sign folded into the top group.
func AppendVLQInt(buf []byte, v int32) []byte {
	if !(-(1<<26) <= v && v < (3<<26)) {
		buf = append(buf, byte((v>>28)&0x7F)|0x80)
	}
	if !(-(1<<19) <= v && v < (3<<19)) {
		buf = append(buf, byte((v>>21)&0x7F)|0x80)
	}
	if !(-(1<<12) <= v && v < (3<<12)) {
		buf = append(buf, byte((v>>14)&0x7F)|0x80)
	}
	if !(-(1<<5) <= v && v < (3<<5)) {
		buf = append(buf, byte((v>>7)&0x7F)|0x80)
	}
	return append(buf, byte(v&0x7F))
}

// AppendVLQUint appends the encoding of an unsigned integer.
func AppendVLQUint(buf []byte, v uint32) []byte {
	return AppendVLQInt(buf, int32(v))
}

// DecodeVLQInt decodes a signed integer, advancing the data slice
// past the consumed bytes.
func DecodeVLQInt(data *[]byte) (int32, error) {
	if len(*data) == 0 {
		return 0, ErrTruncated
	}

	c := uint32((*data)[0])
	*data = (*data)[1:]

	v := c & 0x7F
	if (c & 0x60) == 0x60 {
		// Negative value: sign-extend the leading group.
		v |= ^uint32(0x1F)
	}

	for c&0x80 != 0 {
		if len(*data) == 0 {
			return 0, ErrTruncated
		}
		c = uint32((*data)[0])
		*data = (*data)[1:]
		v = (v << 7) | (c & 0x7F)
	}

	return int32(v), nil
}

// DecodeVLQUint decodes an unsigned integer, advancing the data slice.
func DecodeVLQUint(data *[]byte) (uint32, error) {
	v, err := DecodeVLQInt(data)
	return uint32(v), err
}
