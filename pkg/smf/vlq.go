package smf

import "fmt"

const (
	vlqContinue = 0x80
	vlqMask     = 0x7F

	// MaxVLQBytes is the longest encoding the SMF format allows.
	MaxVLQBytes = 4
	// MaxVLQ is the largest value representable in MaxVLQBytes.
	MaxVLQ = 1<<28 - 1
)

// DecodeVLQ decodes a variable-length quantity from the start of b and returns
// the value and the number of bytes consumed.
func DecodeVLQ(b []byte) (uint32, int, error) {
	var v uint32
	for i := 0; i < MaxVLQBytes; i++ {
		if i >= len(b) {
			return 0, i, fmt.Errorf("%w: variable-length quantity ends after %d bytes", ErrTruncated, i)
		}
		v = v<<7 | uint32(b[i]&vlqMask)
		if b[i]&vlqContinue == 0 {
			return v, i + 1, nil
		}
	}
	return 0, MaxVLQBytes, ErrVLQTooLong
}

// AppendVLQ appends the variable-length encoding of v to dst.
func AppendVLQ(dst []byte, v uint32) ([]byte, error) {
	if v > MaxVLQ {
		return dst, fmt.Errorf("%w: %d", ErrVLQTooLong, v)
	}
	var tmp [MaxVLQBytes]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & vlqMask)
	for v >>= 7; v > 0; v >>= 7 {
		i--
		tmp[i] = byte(v&vlqMask) | vlqContinue
	}
	return append(dst, tmp[i:]...), nil
}
