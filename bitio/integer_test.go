package bitio

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioLittleEndianSixteenBit(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteInteger(0x1234, 16, LittleEndian))
	w.Flush()
	assert.Equal(t, []byte{0x34, 0x12}, w.Bytes())

	r := NewReader(w.Bytes())
	v, err := r.ReadInteger(16, LittleEndian, false)
	require.NoError(t, err)
	assert.EqualValues(t, 0x1234, v)
}

func TestIntegerRoundTripAllWidthsBothOrders(t *testing.T) {
	for _, order := range []ByteOrder{BigEndian, LittleEndian} {
		for n := 1; n <= 64; n++ {
			var max int64 = 1
			if n < 63 {
				max = int64(1)<<uint(n-1) - 1
			} else {
				max = math_MaxInt63()
			}
			for _, x := range []int64{0, max, -1, -max} {
				if n == 64 && x == -max {
					continue
				}
				w := NewWriter()
				require.NoError(t, w.WriteInteger(x, n, order))
				w.Flush()
				r := NewReader(w.Bytes())
				got, err := r.ReadInteger(n, order, true)
				require.NoError(t, err)
				assert.Equal(t, x, got, "order=%v n=%d x=%d", order, n, x)
			}
		}
	}
}

func math_MaxInt63() int64 { return 1<<62 - 1 }

func TestBigIntegerRoundTrip(t *testing.T) {
	cases := []struct {
		n int
		v *big.Int
	}{
		{96, big.NewInt(123456789)},
		{96, big.NewInt(-123456789)},
		{128, new(big.Int).Lsh(big.NewInt(1), 100)},
	}
	for _, order := range []ByteOrder{BigEndian, LittleEndian} {
		for _, c := range cases {
			w := NewWriter()
			require.NoError(t, w.WriteBigInteger(c.v, c.n, order))
			w.Flush()
			r := NewReader(w.Bytes())
			got, err := r.ReadBigInteger(c.n, order)
			require.NoError(t, err)
			assert.Equal(t, 0, c.v.Cmp(got), "order=%v n=%d want=%s got=%s", order, c.n, c.v, got)
		}
	}
}

func TestBitSetOrdering(t *testing.T) {
	w := NewWriter()
	s := NewSet(4)
	s.SetBit(0, true)
	require.NoError(t, w.WriteBitSet(s, BigEndian))
	w.Flush()
	// bit 0 first under BIG_ENDIAN: the first stream bit is set.
	assert.Equal(t, byte(0x80), w.Bytes()[0]&0x80)

	w2 := NewWriter()
	require.NoError(t, w2.WriteBitSet(s, LittleEndian))
	w2.Flush()
	// bit n-1 first under LITTLE_ENDIAN: bit 0 is emitted last of the four.
	r := NewReader(w2.Bytes())
	got, err := r.ReadBitSet(4, LittleEndian)
	require.NoError(t, err)
	assert.True(t, got.Get(0))
	for i := 1; i < 4; i++ {
		assert.False(t, got.Get(i))
	}
}
