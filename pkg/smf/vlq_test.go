package smf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeVLQ(t *testing.T) {
	tests := []struct {
		in   []byte
		want uint32
		n    int
	}{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x7F}, 127, 1},
		{[]byte{0x81, 0x48}, 200, 2},
		{[]byte{0xFF, 0x7F}, 16383, 2},
		{[]byte{0xFF, 0xFF, 0x7F}, 2097151, 3},
		{[]byte{0x81, 0x80, 0x80, 0x00}, 2097152, 4},
		{[]byte{0xC0, 0x80, 0x80, 0x00}, 134217728, 4},
		{[]byte{0xFF, 0xFF, 0xFF, 0x7F}, MaxVLQ, 4},
		{[]byte{0x60, 0xFF}, 0x60, 1},
	}

	for _, tt := range tests {
		got, n, err := DecodeVLQ(tt.in)
		require.NoError(t, err, "% X", tt.in)
		assert.Equal(t, tt.want, got, "% X", tt.in)
		assert.Equal(t, tt.n, n, "% X", tt.in)
	}
}

func TestDecodeVLQTruncated(t *testing.T) {
	_, _, err := DecodeVLQ([]byte{0x81, 0x80})
	assert.ErrorIs(t, err, ErrTruncated)

	_, _, err = DecodeVLQ(nil)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeVLQTooLong(t *testing.T) {
	_, _, err := DecodeVLQ([]byte{0x81, 0x80, 0x80, 0x80, 0x00})
	assert.ErrorIs(t, err, ErrVLQTooLong)
}

func TestVLQRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 0x3F, 0x40, 0x7F, 0x80, 0x2000, 0x3FFF, 0x4000, 0x1FFFFF, 0x200000, 0x8000000, MaxVLQ}
	for v := uint32(1); v < MaxVLQ; v = v*3 + 7 {
		values = append(values, v)
	}

	for _, v := range values {
		enc, err := AppendVLQ(nil, v)
		require.NoError(t, err)
		got, n, err := DecodeVLQ(enc)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(enc), n)
	}
}

func TestAppendVLQRejectsLargeValues(t *testing.T) {
	_, err := AppendVLQ(nil, MaxVLQ+1)
	assert.ErrorIs(t, err, ErrVLQTooLong)
}
