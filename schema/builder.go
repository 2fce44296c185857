package schema

import (
	"fmt"
	"reflect"
)

// Describable is implemented by any user type that wants to be encoded or
// decoded: DescribeSchema registers the type's fields, in wire order, onto
// the Builder. This is the explicit schema-builder API spec.md §9 calls
// for in place of reflective annotation discovery — Go reflection is still
// used elsewhere to read and write already-known field values, but never
// to discover which fields participate in the wire format.
type Describable interface {
	DescribeSchema(b *Builder)
}

// Builder accumulates one user type's field descriptors in declaration
// order. Build validates and freezes them into an immutable Template.
type Builder struct {
	typ           reflect.Type
	header        *Header
	pendingSkips  []Skip
	fields        []*BoundField
	evaluated     []*EvaluatedField
	postProcessed []*PostProcessedField
	checksum      *Checksum
	err           *Error
}

// NewBuilder starts a schema description for typ (a struct type, not a
// pointer).
func NewBuilder(typ reflect.Type) *Builder {
	return &Builder{typ: typ}
}

func (b *Builder) fail(kind ErrorKind, field, format string, args ...any) {
	if b.err != nil {
		return
	}
	b.err = NewError(kind, fmt.Sprintf(format, args...)).WithField(b.typ.Name(), field)
}

// Header records the verbatim header/trailer markers and protocol gate.
func (b *Builder) Header(h Header) *Builder {
	cp := h
	b.header = &cp
	return b
}

// Skip queues a fixed-width skip region before the next bound field.
func (b *Builder) Skip(bits int) *Builder {
	if bits < 0 {
		b.fail(KindAnnotationError, "", "skip width must be non-negative, got %d", bits)
		return b
	}
	b.pendingSkips = append(b.pendingSkips, Skip{Bits: bits})
	return b
}

// SkipUntil queues a terminator-delimited skip region before the next
// bound field.
func (b *Builder) SkipUntil(terminator byte, consume bool) *Builder {
	t := terminator
	b.pendingSkips = append(b.pendingSkips, Skip{UntilTerminator: &t, Consume: consume})
	return b
}

func (b *Builder) bind(name string, typ reflect.Type, binding Binding) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		b.fail(KindAnnotationError, name, "field name must not be empty")
		return b
	}
	for _, f := range b.fields {
		if f.Name == name {
			b.fail(KindAnnotationError, name, "duplicate binding for field %q", name)
			return b
		}
	}
	bf := &BoundField{Name: name, Type: typ, Binding: binding, Skips: b.pendingSkips}
	b.pendingSkips = nil
	b.fields = append(b.fields, bf)
	return b
}

func (b *Builder) Integer(name string, typ reflect.Type, binding Integer) *Builder {
	return b.bind(name, typ, binding)
}

func (b *Builder) BitSet(name string, typ reflect.Type, binding BitSet) *Builder {
	return b.bind(name, typ, binding)
}

func (b *Builder) StringFixed(name string, typ reflect.Type, binding StringFixed) *Builder {
	return b.bind(name, typ, binding)
}

func (b *Builder) StringTerminated(name string, typ reflect.Type, binding StringTerminated) *Builder {
	return b.bind(name, typ, binding)
}

func (b *Builder) Object(name string, typ reflect.Type, binding Object) *Builder {
	return b.bind(name, typ, binding)
}

func (b *Builder) Array(name string, typ reflect.Type, binding Array) *Builder {
	return b.bind(name, typ, binding)
}

func (b *Builder) ListSeparated(name string, typ reflect.Type, binding ListSeparated) *Builder {
	return b.bind(name, typ, binding)
}

// Checksum records the whole-message checksum declaration. There is at
// most one per template.
func (b *Builder) Checksum(binding Checksum) *Builder {
	cp := binding
	b.checksum = &cp
	return b
}

// Evaluated registers a derived field assigned after the last bound field
// decodes.
func (b *Builder) Evaluated(f EvaluatedField) *Builder {
	cp := f
	b.evaluated = append(b.evaluated, &cp)
	return b
}

// PostProcessed registers a symmetric transform tied to an existing bound
// field name.
func (b *Builder) PostProcessed(f PostProcessedField) *Builder {
	cp := f
	b.postProcessed = append(b.postProcessed, &cp)
	return b
}

// Build validates the accumulated description and freezes it into a
// Template, or returns the first AnnotationError (or other compile-time
// violation) encountered.
func (b *Builder) Build() (*Template, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.pendingSkips) > 0 {
		b.fail(KindAnnotationError, "", "trailing skip with no following bound field")
		return nil, b.err
	}
	if err := validateHeader(b.typ, b.header); err != nil {
		return nil, err
	}
	for _, f := range b.fields {
		if err := validateBinding(b.typ, f.Name, f.Binding); err != nil {
			return nil, err
		}
	}
	if err := validateRecursion(b.typ, b.fields); err != nil {
		return nil, err
	}
	if b.checksum != nil {
		if err := validateChecksum(b.typ, b.checksum); err != nil {
			return nil, err
		}
	}

	tmpl := &Template{
		Type:          b.typ,
		Header:        b.header,
		Fields:        b.fields,
		Evaluated:     b.evaluated,
		PostProcessed: b.postProcessed,
		Checksum:      b.checksum,
	}
	return tmpl, nil
}
