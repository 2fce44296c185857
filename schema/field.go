package schema

import "reflect"

// Skip describes a region of bits to discard between fields: either a
// fixed width, or "read until a terminator byte", optionally consuming it.
type Skip struct {
	Bits            int
	UntilTerminator *byte
	Consume         bool
}

// BoundField is the immutable description of one wire-order field: its
// name, its Go type, the binding that codes it, and any skips that
// precede it.
type BoundField struct {
	Name    string
	Type    reflect.Type
	Binding Binding
	Skips   []Skip
}

// EvaluatedField is a derived field assigned after the last bound field
// decodes (and emitted before bound-field encoding begins), per spec.md
// §4.7. ValueExpr is resolved with Evaluator.EvaluateSize, consistent with
// Evaluator's only value-returning operation.
type EvaluatedField struct {
	Name           string
	Type           reflect.Type
	WriteCondition string
	ValueExpr      string
}

// PostProcessedField is a symmetric transform applied to a field's value:
// DecodeApply runs after decode, EncodeApply runs before the corresponding
// wire field is encoded. Unlike EvaluatedField these are plain Go
// functions, not expressions — the design note in spec.md §9 on the
// "injected-field pattern" is resolved here via constructor-passing rather
// than reintroducing an expression-language dependency for arbitrary-typed
// transforms.
type PostProcessedField struct {
	Name        string
	DecodeApply func(root any) (any, error)
	EncodeApply func(root any) (any, error)
}
