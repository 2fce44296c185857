// Package codec dispatches a single BoundField's wire value between a
// bitio.Buffer and its in-memory representation. It knows nothing about
// headers, trailers, converters, validators or checksums — those are the
// engine's job — and nothing about a user type's own field layout beyond
// what the TemplateWalker it is handed can tell it.
package codec

import (
	"fmt"
	"reflect"

	"github.com/dspasibenko/boxon/bitio"
	"github.com/dspasibenko/boxon/eval"
	"github.com/dspasibenko/boxon/schema"
)

// Context is the per-call state a codec needs: the buffer it reads from or
// writes to, the expression evaluator, the message root (for self.* path
// resolution) and a Walker back into the engine for nested types.
//
// Walker exists so Object/Array/ListSeparated bindings can recurse into a
// nested type's own Template without this package importing engine: engine
// already imports codec to build its Registry, so the dependency can only
// run one way. engine.Parser satisfies TemplateWalker and is handed to
// Context by the engine itself, one per Parse/Compose call.
type Context struct {
	Buffer *bitio.Buffer
	Eval   eval.Evaluator
	Root   any
	Walker TemplateWalker
}

// TemplateWalker lets a codec decode or encode a nested user type by its
// reflect.Type, deferring to whatever compiled Template and field-level
// dispatch the engine uses for top-level messages.
type TemplateWalker interface {
	Decode(ctx *Context, typ reflect.Type) (any, error)
	Encode(ctx *Context, typ reflect.Type, value any) error
}

// Codec codes the wire value for one binding kind. Decode/Encode return
// and accept canonical Go values (int64, *big.Int, *bitio.Set, string,
// uint64 for a checksum, or []any for collection/array/list bindings) —
// converting those to and
// from a user struct's actual field types is the engine's job, done once
// via reflect rather than duplicated in every codec.
type Codec interface {
	Decode(ctx *Context, binding schema.Binding, fieldType reflect.Type) (any, error)
	Encode(ctx *Context, binding schema.Binding, fieldType reflect.Type, value any) error
}

// Registry maps a binding Kind to the Codec that handles it. Three
// concrete codecs cover all eight kinds (spec.md §4.3): DefaultCodec for
// the four scalar bindings, ObjectCodec for the three nested/collection
// bindings, ChecksumCodec for the one whole-message binding.
type Registry struct {
	codecs map[schema.Kind]Codec
}

// NewRegistry builds a Registry with the built-in codecs installed.
func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[schema.Kind]Codec, 8)}
	def := &DefaultCodec{}
	obj := &ObjectCodec{}
	chk := &ChecksumCodec{}
	r.codecs[schema.KindInteger] = def
	r.codecs[schema.KindBitSet] = def
	r.codecs[schema.KindStringFixed] = def
	r.codecs[schema.KindStringTerminated] = def
	r.codecs[schema.KindObject] = obj
	r.codecs[schema.KindArray] = obj
	r.codecs[schema.KindListSeparated] = obj
	r.codecs[schema.KindChecksum] = chk
	return r
}

// Register installs or overrides the Codec for kind, the extension point
// behind the public API's RegisterCodec.
func (r *Registry) Register(kind schema.Kind, c Codec) {
	r.codecs[kind] = c
}

// For returns the Codec registered for kind.
func (r *Registry) For(kind schema.Kind) (Codec, error) {
	c, ok := r.codecs[kind]
	if !ok {
		return nil, schema.NewError(schema.KindInternalError, fmt.Sprintf("no codec registered for kind %s", kind))
	}
	return c, nil
}

func concreteType(v any) reflect.Type {
	t := reflect.TypeOf(v)
	if t != nil && t.Kind() == reflect.Ptr {
		return t.Elem()
	}
	return t
}
