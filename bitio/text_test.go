package bitio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringFixedTruncatesWithoutPadding(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteTextFixed("AB", 3, "UTF-8"))
	w.Flush()
	// No padding policy: "AB" (2 bytes) into a 3-byte field writes only 2
	// bytes; callers needing a full-width field pad the string themselves.
	assert.Equal(t, []byte{0x41, 0x42}, w.Bytes())
}

func TestStringTerminatedConsumed(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteText("OK", "ASCII"))
	require.NoError(t, w.WriteByte(0x00))
	w.Flush()
	assert.Equal(t, []byte{0x4F, 0x4B, 0x00}, w.Bytes())

	r := NewReader(w.Bytes())
	s, err := r.ReadTextUntil(0x00, "ASCII", true)
	require.NoError(t, err)
	assert.Equal(t, "OK", s)
	assert.Equal(t, 0, r.BitsRemaining())
}

func TestReadTextUntilNotConsumed(t *testing.T) {
	r := NewReader([]byte{0x4F, 0x4B, 0x00, 0x7A})
	s, err := r.ReadTextUntil(0x00, "ASCII", false)
	require.NoError(t, err)
	assert.Equal(t, "OK", s)
	v, err := r.ReadBits(8)
	require.NoError(t, err)
	assert.EqualValues(t, 0x00, v)
}

func TestPeekTextUntilDoesNotAdvance(t *testing.T) {
	r := NewReader([]byte{0x4F, 0x4B, 0x00})
	s, err := r.PeekTextUntil(0x00, "ASCII")
	require.NoError(t, err)
	assert.Equal(t, "OK", s)
	assert.Equal(t, 24, r.BitsRemaining())
}

func TestReadTextUntilMissingTerminatorIsUnexpectedEOF(t *testing.T) {
	r := NewReader([]byte{0x4F, 0x4B})
	_, err := r.ReadTextUntil(0x00, "ASCII", true)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}
