package descriptor

import (
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
	b.Header(schema.Header{Start: "HI", End: "BY"}).
		Integer("Length", reflect.TypeOf(byte(0)), schema.Integer{SizeExpr: "8", Order: bitio.BigEndian}).
		StringFixed("Name", reflect.TypeOf(""), schema.StringFixed{SizeExpr: "self.Length", Charset: "US-ASCII"}).
		Checksum(schema.Checksum{Bits: 8, Order: bitio.BigEndian, Algorithm: "CRC-8", StoreAs: "Length", StartOffset: 0, EndOffset: 1})
}

func compile(t *testing.T, typ reflect.Type) *schema.Template {
	t.Helper()
	tmpl, err := schema.Compile(typ)
	require.NoError(t, err)
	return tmpl
}

func TestDescribeIncludesHeaderFieldsAndChecksum(t *testing.T) {
	tmpl := compile(t, reflect.TypeOf(greeting{}))
	m := Describe(tmpl)

	assert.Contains(t, m["type"], "greeting")
	header := m["header"].(map[string]any)
	assert.Equal(t, "HI", header["start"])
	assert.Equal(t, "BY", header["end"])

	fields := m["fields"].([]any)
	require.Len(t, fields, 2)
	first := fields[0].(map[string]any)
	assert.Equal(t, "Length", first["name"])
	assert.Equal(t, "Integer", first["kind"])

	checksum := m["checksum"].(map[string]any)
	assert.Equal(t, "CRC-8", checksum["algorithm"])
	assert.Equal(t, "Length", checksum["storeAs"])
}

func TestDumpYAMLRoundTripsThroughMap(t *testing.T) {
	tmpl := compile(t, reflect.TypeOf(greeting{}))
	out, err := DumpYAML(tmpl)
	require.NoError(t, err)
	assert.Contains(t, out, "algorithm: CRC-8")
	assert.Contains(t, out, "name: Length")
}

func TestDumpRendersTitleCasedFieldNames(t *testing.T) {
	tmpl := compile(t, reflect.TypeOf(greeting{}))
	out, err := Dump(tmpl)
	require.NoError(t, err)
	assert.Contains(t, out, "Length (Integer)")
	assert.Contains(t, out, "Name (StringFixed)")
	assert.Contains(t, out, "checksum: CRC-8/8 over [0,1) -> Length")
}
