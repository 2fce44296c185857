// Package eval defines the Evaluator boundary the codec engine calls
// across: a boolean test for write-conditions and variant choices, and a
// size computation for field widths and array counts. The engine treats
// Evaluator as a black box; this package also ships Reference, a small
// expression-language implementation good enough for real schemas.
package eval

// Evaluator is the external expression interpreter the engine calls
// against a root object and a named-variable context. An empty expression
// means "true" for EvaluateBoolean and "unspecified" (-1) for
// EvaluateSize.
type Evaluator interface {
	EvaluateBoolean(expr string, root any) (bool, error)
	EvaluateSize(expr string, root any) (int, error)
	PutVariable(name string, value any)
	RemoveVariable(name string)
}
