package schema

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dspasibenko/boxon/bitio"
)

type simpleMsg struct {
	Length byte
	Name   string
}

func (m *simpleMsg) DescribeSchema(b *Builder) {
	b.Integer("Length", reflect.TypeOf(byte(0)), Integer{SizeExpr: "8", Order: bitio.BigEndian}).
		StringFixed("Name", reflect.TypeOf(""), StringFixed{SizeExpr: "self.Length", Charset: "US-ASCII"})
}

func TestBuilderCompilesAndMemoizes(t *testing.T) {
	typ := reflect.TypeOf(simpleMsg{})
	tmpl, err := Compile(typ)
	require.NoError(t, err)
	require.NotNil(t, tmpl)
	assert.Len(t, tmpl.Fields, 2)
	assert.Equal(t, "Length", tmpl.Fields[0].Name)

	again, err := Compile(typ)
	require.NoError(t, err)
	assert.Same(t, tmpl, again)
}

type duplicateFieldMsg struct{ A int }

func (m *duplicateFieldMsg) DescribeSchema(b *Builder) {
	b.Integer("A", reflect.TypeOf(0), Integer{SizeExpr: "8"}).
		Integer("A", reflect.TypeOf(0), Integer{SizeExpr: "8"})
}

func TestBuilderRejectsDuplicateFieldName(t *testing.T) {
	_, err := NewBuilder(reflect.TypeOf(duplicateFieldMsg{})).
		Integer("A", reflect.TypeOf(0), Integer{SizeExpr: "8"}).
		Integer("A", reflect.TypeOf(0), Integer{SizeExpr: "8"}).
		Build()
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindAnnotationError, se.Kind)
}

func TestBuilderRejectsOutOfRangeIntegerWidth(t *testing.T) {
	_, err := NewBuilder(reflect.TypeOf(struct{}{})).
		Integer("Big", reflect.TypeOf(0), Integer{SizeExpr: "200"}).
		Build()
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindAnnotationError, se.Kind)
}

func TestBuilderRejectsUnknownCharset(t *testing.T) {
	_, err := NewBuilder(reflect.TypeOf(struct{}{})).
		StringFixed("S", reflect.TypeOf(""), StringFixed{SizeExpr: "4", Charset: "EBCDIC-FICTIONAL"}).
		Build()
	require.Error(t, err)
}

func TestBuilderRejectsTrailingSkip(t *testing.T) {
	_, err := NewBuilder(reflect.TypeOf(struct{}{})).
		Skip(8).
		Build()
	require.Error(t, err)
}

func TestBuilderAttachesSkipToNextField(t *testing.T) {
	tmpl, err := NewBuilder(reflect.TypeOf(struct{}{})).
		Skip(4).
		Integer("A", reflect.TypeOf(0), Integer{SizeExpr: "4"}).
		Build()
	require.NoError(t, err)
	require.Len(t, tmpl.Fields, 1)
	require.Len(t, tmpl.Fields[0].Skips, 1)
	assert.Equal(t, 4, tmpl.Fields[0].Skips[0].Bits)
}

func TestBuilderHeaderProtocolRangeRejected(t *testing.T) {
	_, err := NewBuilder(reflect.TypeOf(struct{}{})).
		Header(Header{MinProtocol: "5", MaxProtocol: "2"}).
		Integer("A", reflect.TypeOf(0), Integer{SizeExpr: "8"}).
		Build()
	require.Error(t, err)
}

func TestBuilderChecksumValidation(t *testing.T) {
	_, err := NewBuilder(reflect.TypeOf(struct{}{})).
		Integer("A", reflect.TypeOf(0), Integer{SizeExpr: "8"}).
		Checksum(Checksum{Bits: 16, Algorithm: "CRC-16", StoreAs: "CRC"}).
		Build()
	require.NoError(t, err)

	_, err = NewBuilder(reflect.TypeOf(struct{}{})).
		Integer("A", reflect.TypeOf(0), Integer{SizeExpr: "8"}).
		Checksum(Checksum{Bits: 16, Algorithm: "ROT13", StoreAs: "CRC"}).
		Build()
	require.Error(t, err)
}

type selfRecursive struct {
	Next *selfRecursive
}

func (m *selfRecursive) DescribeSchema(b *Builder) {
	b.Object("Next", reflect.TypeOf(selfRecursive{}), Object{Type: reflect.TypeOf(selfRecursive{})})
}

func TestBuilderRejectsUnboundedSelfRecursion(t *testing.T) {
	_, err := Compile(reflect.TypeOf(selfRecursive{}))
	require.Error(t, err)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, KindAnnotationError, se.Kind)
}

type countedTree struct {
	Children []countedTree
}

func (m *countedTree) DescribeSchema(b *Builder) {
	b.Array("Children", reflect.TypeOf(countedTree{}), Array{ElemType: reflect.TypeOf(countedTree{}), SizeExpr: "self.Count"})
}

func TestBuilderAllowsCountedSelfRecursion(t *testing.T) {
	tmpl, err := Compile(reflect.TypeOf(countedTree{}))
	require.NoError(t, err)
	assert.NotNil(t, tmpl)
}

func TestVariantChoicesMustHaveChoicesOrDefault(t *testing.T) {
	_, err := NewBuilder(reflect.TypeOf(struct{}{})).
		Object("Payload", reflect.TypeOf(struct{}{}), Object{
			Type:       reflect.TypeOf(struct{}{}),
			SelectFrom: &VariantChoices{PrefixLength: 8},
		}).
		Build()
	require.Error(t, err)
}
