package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"github.com/dspasibenko/boxon/bitio"
	"github.com/dspasibenko/boxon/internal/config"
)

// templateCache memoizes Compile by user type, per spec.md §4.6's closing
// step: a Template is built once per type and shared across every
// subsequent Parse/Compose call for it.
var templateCache sync.Map // reflect.Type -> *Template

// Compile returns the compiled Template for typ, building and caching it
// on first use. typ must be a struct type whose pointer implements
// Describable.
func Compile(typ reflect.Type) (*Template, error) {
	if cached, ok := templateCache.Load(typ); ok {
		return cached.(*Template), nil
	}
	ptr := reflect.New(typ)
	d, ok := ptr.Interface().(Describable)
	if !ok {
		return nil, NewError(KindAnnotationError,
			fmt.Sprintf("type %s does not implement schema.Describable", typ)).WithField(typ.Name(), "")
	}
	b := NewBuilder(typ)
	d.DescribeSchema(b)
	tmpl, err := b.Build()
	if err != nil {
		return nil, err
	}
	actual, _ := templateCache.LoadOrStore(typ, tmpl)
	return actual.(*Template), nil
}

// literalInt returns the integer value of expr and true if expr is a bare
// decimal literal with no variable/path references. Non-literal size
// expressions (e.g. "self.Count" or "#prefix") are only checkable at
// decode/encode time, against the live Evaluator, so the compiler skips
// them here per spec.md §4.6's note that static validation is
// best-effort.
func literalInt(expr string) (int, bool) {
	if expr == "" {
		return 0, false
	}
	n, err := strconv.Atoi(expr)
	if err != nil {
		return 0, false
	}
	return n, true
}

func validateBinding(typ reflect.Type, field string, b Binding) error {
	switch v := b.(type) {
	case Integer:
		if n, ok := literalInt(v.SizeExpr); ok {
			if n < config.MinIntegerBits || n > config.MaxIntegerBits {
				return NewError(KindAnnotationError,
					fmt.Sprintf("integer width %d out of range [%d,%d]", n, config.MinIntegerBits, config.MaxIntegerBits)).
					WithField(typ.Name(), field)
			}
		}
	case BitSet:
		if n, ok := literalInt(v.SizeExpr); ok && n < 0 {
			return NewError(KindAnnotationError, fmt.Sprintf("bitset width %d must be non-negative", n)).
				WithField(typ.Name(), field)
		}
	case StringFixed:
		if v.Charset != "" && !bitio.KnownCharset(v.Charset) {
			return NewError(KindAnnotationError, fmt.Sprintf("unknown charset %q", v.Charset)).
				WithField(typ.Name(), field)
		}
	case StringTerminated:
		if v.Charset != "" && !bitio.KnownCharset(v.Charset) {
			return NewError(KindAnnotationError, fmt.Sprintf("unknown charset %q", v.Charset)).
				WithField(typ.Name(), field)
		}
	case Object:
		if err := validateVariantChoices(typ, field, v.SelectFrom); err != nil {
			return err
		}
	case Array:
		if err := validateVariantChoices(typ, field, v.SelectFrom); err != nil {
			return err
		}
	case ListSeparated:
		if v.Charset != "" && !bitio.KnownCharset(v.Charset) {
			return NewError(KindAnnotationError, fmt.Sprintf("unknown charset %q", v.Charset)).
				WithField(typ.Name(), field)
		}
		if err := validateVariantChoices(typ, field, v.SelectSeparated); err != nil {
			return err
		}
	}
	return nil
}

func validateVariantChoices(typ reflect.Type, field string, vc *VariantChoices) error {
	if vc == nil {
		return nil
	}
	if vc.PrefixLength < 0 || vc.PrefixLength > config.MaxPrefixLength {
		return NewError(KindAnnotationError,
			fmt.Sprintf("prefix length %d out of range [0,%d]", vc.PrefixLength, config.MaxPrefixLength)).
			WithField(typ.Name(), field)
	}
	if len(vc.Choices) == 0 && vc.Default == nil {
		return NewError(KindAnnotationError, "variant has no choices and no default").
			WithField(typ.Name(), field)
	}
	for i, c := range vc.Choices {
		if c.Type == nil {
			return NewError(KindAnnotationError, fmt.Sprintf("choice %d has no target type", i)).
				WithField(typ.Name(), field)
		}
		if c.Condition == "" {
			return NewError(KindAnnotationError, fmt.Sprintf("choice %d has no condition", i)).
				WithField(typ.Name(), field)
		}
	}
	return nil
}

func validateChecksum(typ reflect.Type, c *Checksum) error {
	if c.Bits < config.MinChecksumBits || c.Bits > config.MaxChecksumBits {
		return NewError(KindAnnotationError,
			fmt.Sprintf("checksum width %d out of range [%d,%d]", c.Bits, config.MinChecksumBits, config.MaxChecksumBits)).
			WithField(typ.Name(), "")
	}
	switch c.Algorithm {
	case "CRC-8", "CRC-16", "CRC-32", "ADDITIVE":
	default:
		return NewError(KindAnnotationError, fmt.Sprintf("unknown checksum algorithm %q", c.Algorithm)).
			WithField(typ.Name(), "")
	}
	if c.StoreAs == "" {
		return NewError(KindAnnotationError, "checksum has no StoreAs field name").WithField(typ.Name(), "")
	}
	return nil
}

// validateHeader checks MinProtocol <= MaxProtocol when both are given,
// comparing numerically when both parse as integers and lexicographically
// otherwise (protocol tags are free-form strings per spec.md §3).
func validateHeader(typ reflect.Type, h *Header) error {
	if h == nil || h.MinProtocol == "" || h.MaxProtocol == "" {
		return nil
	}
	minN, minOK := strconv.Atoi(h.MinProtocol)
	maxN, maxOK := strconv.Atoi(h.MaxProtocol)
	if minOK == nil && maxOK == nil {
		if minN > maxN {
			return NewError(KindAnnotationError,
				fmt.Sprintf("min protocol %d exceeds max protocol %d", minN, maxN)).WithField(typ.Name(), "")
		}
		return nil
	}
	if h.MinProtocol > h.MaxProtocol {
		return NewError(KindAnnotationError,
			fmt.Sprintf("min protocol %q exceeds max protocol %q", h.MinProtocol, h.MaxProtocol)).WithField(typ.Name(), "")
	}
	return nil
}

// validateRecursion rejects self- or mutually-recursive Object bindings
// reached through an unbounded path. A type may nest itself (or a mutual
// partner) through a counted Array or a terminator-bounded ListSeparated
// (spec.md §4.7's closing note): those edges are bounded by the element
// count or the wire's own terminator, not by the parser's call stack, so
// only a bare Object edge back to a type already on the path is an error.
func validateRecursion(root reflect.Type, fields []*BoundField) error {
	path := map[reflect.Type]bool{root: true}
	return walkRecursion(fields, path)
}

// structuralFields extracts t's declared BoundFields without running
// Build's validation, purely to walk the nesting graph for cycle
// detection. Types that don't implement Describable (not yet registered,
// or external) are skipped rather than treated as an error here — Compile
// will report the real problem if t is ever used as a field's own type.
func structuralFields(t reflect.Type) []*BoundField {
	d, ok := reflect.New(t).Interface().(Describable)
	if !ok {
		return nil
	}
	tb := &Builder{typ: t}
	d.DescribeSchema(tb)
	return tb.fields
}

func walkRecursion(fields []*BoundField, path map[reflect.Type]bool) error {
	for _, f := range fields {
		var nested reflect.Type
		counted := false
		switch b := f.Binding.(type) {
		case Object:
			nested = b.Type
		case Array:
			nested, counted = b.ElemType, true
		case ListSeparated:
			nested, counted = b.ElemType, true
		default:
			continue
		}
		if nested == nil {
			continue
		}
		if path[nested] {
			if !counted {
				return NewError(KindAnnotationError,
					fmt.Sprintf("unbounded recursion through Object field %q (type %s already on the path)", f.Name, nested.Name())).
					WithField(nested.Name(), f.Name)
			}
			continue
		}
		path[nested] = true
		if err := walkRecursion(structuralFields(nested), path); err != nil {
			return err
		}
		delete(path, nested)
	}
	return nil
}
