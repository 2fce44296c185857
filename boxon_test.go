package boxon

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dspasibenko/boxon/bitio"
	"github.com/dspasibenko/boxon/schema"
)

type greeting struct {
	Length byte
	Name   string
}

func (m *greeting) DescribeSchema(b *schema.Builder) {
	b.Integer("Length", reflect.TypeOf(byte(0)), schema.Integer{SizeExpr: "8", Order: bitio.BigEndian}).
		StringFixed("Name", reflect.TypeOf(""), schema.StringFixed{SizeExpr: "self.Length", Charset: "US-ASCII"})
}

func TestCoreParseComposeRoundTrip(t *testing.T) {
	core := NewBuilder().Build()
	typ := reflect.TypeOf(greeting{})
	in := &greeting{Length: 5, Name: "hello"}

	data, err := core.Compose(typ, in)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x05hello"), data)

	out, err := core.Parse(typ, data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCoreDescribeRendersFields(t *testing.T) {
	core := NewBuilder().Build()
	m, err := core.Describe(reflect.TypeOf(greeting{}))
	require.NoError(t, err)
	fields := m["fields"].([]any)
	require.Len(t, fields, 2)
	assert.Equal(t, "Length", fields[0].(map[string]any)["name"])
}

type checked struct {
	Length byte
	Name   string
	CRC    byte
}

func (m *checked) DescribeSchema(b *schema.Builder) {
	b.Integer("Length", reflect.TypeOf(byte(0)), schema.Integer{SizeExpr: "8", Order: bitio.BigEndian}).
		StringFixed("Name", reflect.TypeOf(""), schema.StringFixed{SizeExpr: "self.Length", Charset: "US-ASCII"}).
		Checksum(schema.Checksum{Bits: 8, Order: bitio.BigEndian, Algorithm: "CRC-8", StoreAs: "CRC", StartOffset: 0, EndOffset: 4})
}

func TestCoreParseSurfacesChecksumMismatchAsSentinel(t *testing.T) {
	core := NewBuilder().Build()
	typ := reflect.TypeOf(checked{})
	data, err := core.Compose(typ, &checked{Length: 3, Name: "abc"})
	require.NoError(t, err)
	data[1] ^= 0xFF

	_, err = core.Parse(typ, data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChecksumMismatch))
}
