package schema

import (
	"fmt"
	"reflect"

	"github.com/dspasibenko/boxon/bitio"
)

// Choice is one entry of a VariantChoices list: a condition evaluated
// against the root object, the concrete type it selects, and — for the
// common case of a literal prefix comparison — the literal tag value so
// the engine can write it back on encode without re-parsing Condition.
type Choice struct {
	Condition   string
	Type        reflect.Type
	PrefixValue *uint64
	PrefixText  *string
}

// UsesPrefixVariable reports whether Condition references the #prefix
// context variable, per spec.md §4.4's syntactic test: the token #prefix
// followed by a non-identifier character (or end of string).
func (c Choice) UsesPrefixVariable() bool {
	return containsPrefixToken(c.Condition)
}

func containsPrefixToken(s string) bool {
	const token = "#prefix"
	for i := 0; i+len(token) <= len(s); i++ {
		if s[i:i+len(token)] != token {
			continue
		}
		if i+len(token) == len(s) {
			return true
		}
		next := s[i+len(token)]
		if !isIdentByte(next) {
			return true
		}
	}
	return false
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// WhenPrefixEquals builds a Choice for prefix-tagged dispatch (§4.4,
// "Prefix-tagged"): the prefix integer read in PrefixOrder/PrefixLength is
// exposed as #prefix, and this choice fires when it equals bits.
func WhenPrefixEquals(bits uint64, typ reflect.Type) Choice {
	v := bits
	return Choice{Condition: fmt.Sprintf("#prefix == %d", bits), Type: typ, PrefixValue: &v}
}

// WhenPrefixTextEquals builds a Choice for terminator-tagged dispatch
// (§4.4, "Terminator-tagged separated"): the peeked text up to the
// terminator is exposed as #prefix, and this choice fires when it equals
// tag.
func WhenPrefixTextEquals(tag string, typ reflect.Type) Choice {
	t := tag
	return Choice{Condition: fmt.Sprintf("#prefix == %q", tag), Type: typ, PrefixText: &t}
}

// When builds a Choice from an arbitrary boolean expression evaluated
// against the root object (not necessarily referencing #prefix).
func When(condition string, typ reflect.Type) Choice {
	return Choice{Condition: condition, Type: typ}
}

// VariantChoices is the ordered alternative list that drives variant
// selection (spec.md §3 "VariantChoices", §4.4).
type VariantChoices struct {
	PrefixLength int
	PrefixOrder  bitio.ByteOrder
	Choices      []Choice
	Default      reflect.Type
}

// ConverterChoice pairs a condition with the Converter it selects.
type ConverterChoice struct {
	Condition string
	Converter Converter
}

// ConverterChoices is the ordered alternative list used to pick a
// converter (spec.md §3 "ConverterChoices", §4.5).
type ConverterChoices struct {
	Choices []ConverterChoice
	Default Converter
}

// Resolve returns the first choice whose condition is true, or Default.
func (cc ConverterChoices) Resolve(evalBool func(expr string) (bool, error)) (Converter, error) {
	for _, c := range cc.Choices {
		ok, err := evalBool(c.Condition)
		if err != nil {
			return nil, err
		}
		if ok {
			return c.Converter, nil
		}
	}
	if cc.Default != nil {
		return cc.Default, nil
	}
	return IdentityConverter{}, nil
}
