package protocol

// CRC16 computes the frame checksum. Same polynomial arrangement as
// the classic serial bootloader CRC so existing host tooling can talk
// to the controller unchanged.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b = b ^ uint8(crc&0xFF)
		b = b ^ (b << 4)
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}
