// Package schema holds the compiled, immutable description of a wire
// layout: binding variants, the per-type Template they assemble into, and
// the Builder-based compiler that replaces reflective annotation discovery
// with explicit registration calls (see DESIGN.md).
package schema

import (
	"reflect"

	"github.com/dspasibenko/boxon/bitio"
)

// Kind identifies which binding variant a field carries; it is the
// CodecRegistry's dispatch key.
type Kind int

const (
	KindInteger Kind = iota
	KindBitSet
	KindStringFixed
	KindStringTerminated
	KindObject
	KindArray
	KindListSeparated
	KindChecksum
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindBitSet:
		return "BitSet"
	case KindStringFixed:
		return "StringFixed"
	case KindStringTerminated:
		return "StringTerminated"
	case KindObject:
		return "Object"
	case KindArray:
		return "Array"
	case KindListSeparated:
		return "ListSeparated"
	case KindChecksum:
		return "Checksum"
	}
	return "Unknown"
}

// Binding is the tagged-variant description of one field's wire layout.
type Binding interface {
	Kind() Kind
}

// Integer binds an arbitrary-bit-width (1..128) two's-complement field.
// Signed selects signed or unsigned decoding for widths up to 64 bits;
// wider fields always decode as a signed *big.Int, whatever Signed says.
// Collection, when non-empty, is the size
// expression for a fixed count of such elements in a row (the "collection
// wrapper" flag of spec.md §3, realized here for the four default-codec
// binding kinds).
type Integer struct {
	SizeExpr   string
	Order      bitio.ByteOrder
	Signed     bool
	Collection string
	Converter  ConverterChoices
	Validator  Validator
}

func (Integer) Kind() Kind { return KindInteger }

// BitSet binds a raw n-bit field exposed as a bitio.Set.
type BitSet struct {
	SizeExpr   string
	Order      bitio.ByteOrder
	Collection string
	Converter  ConverterChoices
	Validator  Validator
}

func (BitSet) Kind() Kind { return KindBitSet }

// StringFixed binds a fixed-byte-count text field.
type StringFixed struct {
	SizeExpr   string
	Charset    string
	Collection string
	Converter  ConverterChoices
	Validator  Validator
}

func (StringFixed) Kind() Kind { return KindStringFixed }

// StringTerminated binds a terminator-delimited text field.
type StringTerminated struct {
	Terminator        byte
	ConsumeTerminator bool
	Charset           string
	Collection        string
	Converter         ConverterChoices
	Validator         Validator
}

func (StringTerminated) Kind() Kind { return KindStringTerminated }

// Object binds a single nested type, optionally polymorphic via SelectFrom.
type Object struct {
	Type          reflect.Type
	SelectFrom    *VariantChoices
	SelectDefault reflect.Type
	Converter     ConverterChoices
	Validator     Validator
}

func (Object) Kind() Kind { return KindObject }

// Array binds a fixed-count list of (possibly polymorphic) nested objects.
// SizeExpr resolves to the element count.
type Array struct {
	ElemType      reflect.Type
	SizeExpr      string
	SelectFrom    *VariantChoices
	SelectDefault reflect.Type
	Converter     ConverterChoices
	Validator     Validator
}

func (Array) Kind() Kind { return KindArray }

// ListSeparated binds a tag-per-element list of nested objects, terminated
// by an empty peeked prefix (spec.md §4.8's state machine).
type ListSeparated struct {
	ElemType        reflect.Type
	Terminator      byte
	Charset         string
	SelectSeparated *VariantChoices
	SelectDefault   reflect.Type
	Converter       ConverterChoices
	Validator       Validator
}

func (ListSeparated) Kind() Kind { return KindListSeparated }

// Checksum binds a whole-message checksum field.
type Checksum struct {
	Bits        int
	Order       bitio.ByteOrder
	Algorithm   string
	StartOffset int
	EndOffset   int
	StoreAs     string
}

func (Checksum) Kind() Kind { return KindChecksum }
