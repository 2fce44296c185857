package boxon

import (
	"reflect"

	"github.com/dspasibenko/boxon/codec"
	"github.com/dspasibenko/boxon/descriptor"
	"github.com/dspasibenko/boxon/engine"
	"github.com/dspasibenko/boxon/eval"
	"github.com/dspasibenko/boxon/schema"
)

// Builder assembles an immutable Core. It replaces a package-level mutable
// registry: the evaluator is fixed at Build time, and the resulting Core is
// safe to share by value across goroutines, per spec.md §9's "expose a
// Builder that produces an immutable Core value". Build does not copy the
// codec registry: a RegisterCodec call on the same Builder after Build
// also changes the codecs of every Core it has already built.
type Builder struct {
	registry  *codec.Registry
	evaluator eval.Evaluator
}

// NewBuilder starts a Builder pre-loaded with the built-in codecs
// (codec.NewRegistry) and the reference expression evaluator
// (eval.NewReference). Both can be overridden before Build.
func NewBuilder() *Builder {
	return &Builder{
		registry:  codec.NewRegistry(),
		evaluator: eval.NewReference(),
	}
}

// RegisterCodec installs or overrides the Codec used for kind.
func (b *Builder) RegisterCodec(kind schema.Kind, c codec.Codec) *Builder {
	b.registry.Register(kind, c)
	return b
}

// SetEvaluator replaces the expression evaluator used for write conditions,
// size expressions and variant selection. Any type implementing
// eval.Evaluator may be supplied; eval.Reference is only the reference
// implementation, not a requirement.
func (b *Builder) SetEvaluator(e eval.Evaluator) *Builder {
	b.evaluator = e
	return b
}

// Build freezes the accumulated configuration into a Core.
func (b *Builder) Build() *Core {
	return &Core{parser: engine.NewParser(b.registry, b.evaluator)}
}

// Core is the public entry point: parse, compose and describe schema-bound
// Go types. A Core has no mutable state after construction and may be
// shared freely across goroutines.
type Core struct {
	parser *engine.Parser
}

// Parse decodes data against typ's compiled Template and returns a pointer
// to a newly allocated value of typ.
func (c *Core) Parse(typ reflect.Type, data []byte) (any, error) {
	return c.parser.Parse(typ, data)
}

// Compose encodes value — a pointer to, or a value of, a type implementing
// schema.Describable — against its compiled Template.
func (c *Core) Compose(typ reflect.Type, value any) ([]byte, error) {
	return c.parser.Compose(typ, value)
}

// Describe compiles typ's Template (if not already cached) and renders it
// as a JSON-shaped map, the debug description spec.md §6 calls for.
func (c *Core) Describe(typ reflect.Type) (map[string]any, error) {
	tmpl, err := schema.Compile(typ)
	if err != nil {
		return nil, err
	}
	return descriptor.Describe(tmpl), nil
}
