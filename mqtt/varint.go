package mqtt

// MaxRemainingLength is the largest value that fits in four Remaining Length bytes.
const MaxRemainingLength = 268435455

// maxLenBytes is the maximum number of bytes in a Remaining Length.
const maxLenBytes = 4

// EncodeRemainingLength returns the variable length encoding of value. Values that would need a fifth
// byte yield ErrEncodingOverflow.
func EncodeRemainingLength(value uint64) ([]byte, error) {
	return AppendRemainingLength(make([]byte, 0, maxLenBytes), value)
}

// AppendRemainingLength appends the variable length encoding of value to dst and returns the
// extended slice.
func AppendRemainingLength(dst []byte, value uint64) ([]byte, error) {
	if value > MaxRemainingLength {
		return dst, ErrEncodingOverflow
	}
	for {
		d := byte(value % 128)
		value /= 128
		// more digits to encode, set the top bit of this one
		if value > 0 {
			d |= 0x80
		}
		dst = append(dst, d)
		if value == 0 {
			return dst, nil
		}
	}
}

// DecodeRemainingLength decodes a variable length integer from the start of buf and returns it
// together with the number of bytes it occupied.
//
// ErrMalformedLength is returned if the fourth byte still has its continuation bit set and
// ErrTruncatedPacket if buf ends before the integer does.
func DecodeRemainingLength(buf []byte) (uint64, int, error) {
	var value uint64
	multiplier := uint64(1)
	for i := 0; i < maxLenBytes; i++ {
		if i >= len(buf) {
			return 0, i, ErrTruncatedPacket
		}
		c := buf[i]
		value += uint64(c&0x7f) * multiplier
		if (c & 0x80) == 0 {
			return value, i + 1, nil
		}
		multiplier *= 128
	}
	return 0, maxLenBytes, ErrMalformedLength
}

// RemainingLengthSize returns the number of bytes needed to encode value as a Remaining Length.
func RemainingLengthSize(value int) int {
	switch {
	case value < 128:
		return 1
	case value < 16384:
		return 2
	case value < 2097152:
		return 3
	default:
		return 4
	}
}
