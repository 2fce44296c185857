package bitio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBitsThenReadBitsRoundTrip(t *testing.T) {
	for n := 1; n <= 64; n++ {
		var max uint64
		if n == 64 {
			max = ^uint64(0)
		} else {
			max = uint64(1)<<uint(n) - 1
		}
		samples := []uint64{0, max}
		if max > 2 {
			samples = append(samples, max/2, max/3+1)
		}
		for _, x := range samples {
			w := NewWriter()
			require.NoError(t, w.WriteBits(x, n))
			w.Flush()

			r := NewReader(w.Bytes())
			got, err := r.ReadBits(n)
			require.NoError(t, err)
			assert.Equal(t, x, got, "n=%d x=%d", n, x)
		}
	}
}

func TestScenarioTwoFieldsPackIntoOneByte(t *testing.T) {
	// Integer{size=5}=21 (10101) followed by Integer{size=3}=5 (101) packs
	// into exactly one byte 0xAD.
	w := NewWriter()
	require.NoError(t, w.WriteBits(21, 5))
	require.NoError(t, w.WriteBits(5, 3))
	w.Flush()
	assert.Equal(t, []byte{0xAD}, w.Bytes())

	r := NewReader([]byte{0xAD})
	a, err := r.ReadBits(5)
	require.NoError(t, err)
	assert.EqualValues(t, 21, a)
	b, err := r.ReadBits(3)
	require.NoError(t, err)
	assert.EqualValues(t, 5, b)
}

func TestArrayOfNibblesPadsOnFlush(t *testing.T) {
	// Array of three Integer{size=4} values [1,2,3] encodes to 0x12 0x30;
	// the trailing nibble is zero padding produced by Flush.
	w := NewWriter()
	for _, v := range []uint64{1, 2, 3} {
		require.NoError(t, w.WriteBits(v, 4))
	}
	w.Flush()
	assert.Equal(t, []byte{0x12, 0x30}, w.Bytes())
}

func TestUnexpectedEOF(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, err := r.ReadBits(9)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestSkipAdvancesPosition(t *testing.T) {
	r := NewReader([]byte{0xFF, 0x00})
	require.NoError(t, r.Skip(4))
	byteIdx, bitIdx := r.Position()
	assert.Equal(t, 0, byteIdx)
	assert.Equal(t, 4, bitIdx)
	v, err := r.ReadBits(4)
	require.NoError(t, err)
	assert.EqualValues(t, 0xF, v)
}
