package engine

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dspasibenko/boxon/bitio"
	"github.com/dspasibenko/boxon/codec"
	"github.com/dspasibenko/boxon/eval"
	"github.com/dspasibenko/boxon/schema"
)

func newParser() *Parser {
	return NewParser(codec.NewRegistry(), eval.NewReference())
}

type greeting struct {
	Length byte
	Name   string
}

func (m *greeting) DescribeSchema(b *schema.Builder) {
	b.Integer("Length", reflect.TypeOf(byte(0)), schema.Integer{SizeExpr: "8", Order: bitio.BigEndian}).
		StringFixed("Name", reflect.TypeOf(""), schema.StringFixed{SizeExpr: "self.Length", Charset: "US-ASCII"})
}

func TestParserRoundTripSimpleFields(t *testing.T) {
	p := newParser()
	typ := reflect.TypeOf(greeting{})
	in := &greeting{Length: 5, Name: "hello"}

	data, err := p.Compose(typ, in)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x05hello"), data)

	out, err := p.Parse(typ, data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

type framed struct {
	Code byte
}

func (m *framed) DescribeSchema(b *schema.Builder) {
	b.Header(schema.Header{Start: "HI", End: "BY", Charset: "US-ASCII"}).
		Integer("Code", reflect.TypeOf(byte(0)), schema.Integer{SizeExpr: "8"})
}

func TestParserHeaderAndTrailer(t *testing.T) {
	p := newParser()
	typ := reflect.TypeOf(framed{})
	in := &framed{Code: 42}

	data, err := p.Compose(typ, in)
	require.NoError(t, err)
	assert.Equal(t, []byte("HI"), data[:2])
	assert.Equal(t, []byte("BY"), data[len(data)-2:])

	out, err := p.Parse(typ, data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParserRejectsWrongHeader(t *testing.T) {
	p := newParser()
	typ := reflect.TypeOf(framed{})
	data, err := p.Compose(typ, &framed{Code: 1})
	require.NoError(t, err)
	data[0] = 'X'

	_, err = p.Parse(typ, data)
	require.Error(t, err)
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schema.KindNoHeader, se.Kind)
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

func TestParserChecksumPatchAndVerify(t *testing.T) {
	p := newParser()
	typ := reflect.TypeOf(checked{})
	in := &checked{Length: 3, Name: "abc"}

	data, err := p.Compose(typ, in)
	require.NoError(t, err)
	require.Len(t, data, 5)

	out, err := p.Parse(typ, data)
	require.NoError(t, err)
	outChecked := out.(*checked)
	assert.NotZero(t, outChecked.CRC)
	assert.Equal(t, in.Length, outChecked.Length)
	assert.Equal(t, in.Name, outChecked.Name)
}

func TestParserDetectsChecksumMismatch(t *testing.T) {
	p := newParser()
	typ := reflect.TypeOf(checked{})
	data, err := p.Compose(typ, &checked{Length: 3, Name: "abc"})
	require.NoError(t, err)
	data[1] ^= 0xFF // corrupt a byte covered by the checksum range

	_, err = p.Parse(typ, data)
	require.Error(t, err)
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schema.KindChecksumMismatch, se.Kind)
}

type derivedMsg struct {
	Source  byte
	Derived byte
}

func (m *derivedMsg) DescribeSchema(b *schema.Builder) {
	b.Integer("Source", reflect.TypeOf(byte(0)), schema.Integer{SizeExpr: "8"}).
		Evaluated(schema.EvaluatedField{Name: "Derived", ValueExpr: "self.Source"}).
		Integer("Derived", reflect.TypeOf(byte(0)), schema.Integer{SizeExpr: "8"})
}

func TestParserEvaluatedFieldTiming(t *testing.T) {
	p := newParser()
	typ := reflect.TypeOf(derivedMsg{})

	// Encode: Evaluated runs before the bound-field loop, so the stale
	// Derived value the caller set is overwritten by self.Source before
	// its own BoundField is written.
	data, err := p.Compose(typ, &derivedMsg{Source: 7, Derived: 99})
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 7}, data)

	// Decode: Evaluated runs after the last bound field, recomputing
	// Derived from the freshly decoded Source even if the wire disagreed.
	data[1] = 0 // corrupt the wire value of Derived
	out, err := p.Parse(typ, data)
	require.NoError(t, err)
	decoded := out.(*derivedMsg)
	assert.EqualValues(t, 7, decoded.Source)
	assert.EqualValues(t, 7, decoded.Derived)
}

type ppMsg struct {
	Flag byte
}

func (m *ppMsg) DescribeSchema(b *schema.Builder) {
	b.Integer("Flag", reflect.TypeOf(byte(0)), schema.Integer{SizeExpr: "8"}).
		PostProcessed(schema.PostProcessedField{
			Name: "Flag",
			DecodeApply: func(root any) (any, error) {
				return root.(*ppMsg).Flag + 1, nil
			},
			EncodeApply: func(root any) (any, error) {
				return root.(*ppMsg).Flag - 1, nil
			},
		})
}

func TestParserPostProcessedAsymmetricTiming(t *testing.T) {
	p := newParser()
	typ := reflect.TypeOf(ppMsg{})

	data, err := p.Compose(typ, &ppMsg{Flag: 5})
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, data) // EncodeApply ran before Flag's own codec write

	out, err := p.Parse(typ, data)
	require.NoError(t, err)
	assert.EqualValues(t, 5, out.(*ppMsg).Flag) // DecodeApply restores it afterward
}

type variantA struct{ X byte }

func (m *variantA) DescribeSchema(b *schema.Builder) {
	b.Integer("X", reflect.TypeOf(byte(0)), schema.Integer{SizeExpr: "8"})
}

type variantB struct{ Y byte }

func (m *variantB) DescribeSchema(b *schema.Builder) {
	b.Integer("Y", reflect.TypeOf(byte(0)), schema.Integer{SizeExpr: "8"})
}

type envelope struct {
	Payload any
}

func (m *envelope) DescribeSchema(b *schema.Builder) {
	b.Object("Payload", reflect.TypeOf((*any)(nil)).Elem(), schema.Object{
		SelectFrom: &schema.VariantChoices{
			PrefixLength: 8,
			Choices: []schema.Choice{
				schema.WhenPrefixEquals(1, reflect.TypeOf(variantA{})),
				schema.WhenPrefixEquals(2, reflect.TypeOf(variantB{})),
			},
		},
	})
}

func TestParserVariantDispatchRoundTrip(t *testing.T) {
	p := newParser()
	typ := reflect.TypeOf(envelope{})

	data, err := p.Compose(typ, &envelope{Payload: &variantB{Y: 9}})
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 9}, data)

	out, err := p.Parse(typ, data)
	require.NoError(t, err)
	payload, ok := out.(*envelope).Payload.(*variantB)
	require.True(t, ok)
	assert.EqualValues(t, 9, payload.Y)
}
