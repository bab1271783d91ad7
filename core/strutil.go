package core

// itoa converts an integer to a string without pulling in fmt.
// Debug strings are built in timer-adjacent code where allocation
// churn from fmt matters on small targets.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + utoa(uint32(-n))
	}
	return utoa(uint32(n))
}

// utoa converts an unsigned integer to a string.
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// Itoa is the exported form for target mains and debug hooks.
func Itoa(n int) string { return itoa(n) }

// Utoa is the exported form for target mains and debug hooks.
func Utoa(n uint32) string { return utoa(n) }
