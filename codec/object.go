package codec

import (
	"fmt"
	"reflect"

	"github.com/dspasibenko/boxon/schema"
)

// ObjectCodec codes the three bindings that nest another type: Object
// (single, optionally polymorphic), Array (fixed count, optionally
// polymorphic) and ListSeparated (tag-terminated list, spec.md §4.8).
// Nested decode/encode is delegated to ctx.Walker so this codec never
// needs to know a nested type's own Template.
type ObjectCodec struct{}

func (c *ObjectCodec) Decode(ctx *Context, binding schema.Binding, fieldType reflect.Type) (any, error) {
	switch v := binding.(type) {
	case schema.Object:
		return c.decodeObject(ctx, v)
	case schema.Array:
		return c.decodeArray(ctx, v)
	case schema.ListSeparated:
		return c.decodeListSeparated(ctx, v)
	}
	return nil, schema.NewError(schema.KindInternalError, fmt.Sprintf("object codec cannot handle %s", binding.Kind()))
}

func (c *ObjectCodec) Encode(ctx *Context, binding schema.Binding, fieldType reflect.Type, value any) error {
	switch v := binding.(type) {
	case schema.Object:
		return c.encodeObject(ctx, v, value)
	case schema.Array:
		return c.encodeArray(ctx, v, value)
	case schema.ListSeparated:
		return c.encodeListSeparated(ctx, v, value)
	}
	return schema.NewError(schema.KindInternalError, fmt.Sprintf("object codec cannot handle %s", binding.Kind()))
}

func (c *ObjectCodec) decodeObject(ctx *Context, v schema.Object) (any, error) {
	typ := v.Type
	if v.SelectFrom != nil {
		t, err := selectVariantType(ctx, v.SelectFrom, v.SelectDefault)
		if err != nil {
			return nil, err
		}
		typ = t
	}
	return ctx.Walker.Decode(ctx, typ)
}

func (c *ObjectCodec) encodeObject(ctx *Context, v schema.Object, value any) error {
	typ := v.Type
	if v.SelectFrom != nil {
		typ = concreteType(value)
		if err := encodeVariantPrefix(ctx, v.SelectFrom, v.SelectDefault, typ); err != nil {
			return err
		}
	}
	return ctx.Walker.Encode(ctx, typ, value)
}

func (c *ObjectCodec) decodeArray(ctx *Context, v schema.Array) (any, error) {
	n, err := ctx.Eval.EvaluateSize(v.SizeExpr, ctx.Root)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, schema.NewError(schema.KindSizeMismatch, "array size expression did not resolve to a count")
	}
	out := make([]any, n)
	for i := 0; i < n; i++ {
		typ := v.ElemType
		if v.SelectFrom != nil {
			t, err := selectVariantType(ctx, v.SelectFrom, v.SelectDefault)
			if err != nil {
				return nil, err
			}
			typ = t
		}
		elem, err := ctx.Walker.Decode(ctx, typ)
		if err != nil {
			return nil, err
		}
		out[i] = elem
	}
	return out, nil
}

func (c *ObjectCodec) encodeArray(ctx *Context, v schema.Array, value any) error {
	items, ok := value.([]any)
	if !ok {
		return schema.NewError(schema.KindInternalError, "array encode expected []any")
	}
	for _, item := range items {
		typ := concreteType(item)
		if v.SelectFrom != nil {
			if err := encodeVariantPrefix(ctx, v.SelectFrom, v.SelectDefault, typ); err != nil {
				return err
			}
		}
		if err := ctx.Walker.Encode(ctx, typ, item); err != nil {
			return err
		}
	}
	return nil
}

// decodeListSeparated implements the §4.8 state machine: AT_TAG_PEEK peeks
// the next tag and transitions to DONE the moment that peek comes back
// empty — either because the buffer is exhausted or because the wire
// carries an explicit empty-tag terminator marking the list's end, which
// this still consumes. Otherwise it goes to AT_ELEMENT: resolve the
// variant, consume the tag and its terminator, and decode one element.
func (c *ObjectCodec) decodeListSeparated(ctx *Context, v schema.ListSeparated) (any, error) {
	var out []any
	for {
		if ctx.Buffer.BitsRemaining() == 0 {
			break
		}
		tag, err := ctx.Buffer.PeekTextUntil(v.Terminator, v.Charset)
		if err != nil {
			return nil, err
		}
		if tag == "" {
			if _, err := ctx.Buffer.ReadTextUntil(v.Terminator, v.Charset, true); err != nil {
				return nil, err
			}
			break
		}
		typ := v.ElemType
		if v.SelectSeparated != nil {
			t, err := selectSeparatedType(ctx, v.SelectSeparated, v.SelectDefault, tag)
			if err != nil {
				return nil, err
			}
			typ = t
		}
		if _, err := ctx.Buffer.ReadTextUntil(v.Terminator, v.Charset, true); err != nil {
			return nil, err
		}
		elem, err := ctx.Walker.Decode(ctx, typ)
		if err != nil {
			return nil, err
		}
		out = append(out, elem)
	}
	return out, nil
}

// encodeListSeparated mirrors decodeListSeparated's state machine: each
// item is written as tag+terminator+element, and the list closes with a
// lone terminator byte (an empty tag), the explicit DONE marker decode
// looks for so a following field can't be mistaken for another element.
func (c *ObjectCodec) encodeListSeparated(ctx *Context, v schema.ListSeparated, value any) error {
	items, ok := value.([]any)
	if !ok {
		return schema.NewError(schema.KindInternalError, "list-separated encode expected []any")
	}
	for _, item := range items {
		typ := concreteType(item)
		tag := typ.Name()
		if v.SelectSeparated != nil {
			choice, found := choiceForType(v.SelectSeparated, typ)
			switch {
			case found && choice.PrefixText != nil:
				tag = *choice.PrefixText
			case typ == v.SelectSeparated.Default || typ == v.SelectDefault:
				return schema.NewError(schema.KindInternalError, "list-separated default type has no declared tag to encode")
			case !found:
				return schema.NewError(schema.KindNoAlternative, fmt.Sprintf("no separated-list variant declares type %s for encoding", typ))
			}
		}
		if err := ctx.Buffer.WriteText(tag, v.Charset); err != nil {
			return err
		}
		if err := ctx.Buffer.WriteByte(v.Terminator); err != nil {
			return err
		}
		if err := ctx.Walker.Encode(ctx, typ, item); err != nil {
			return err
		}
	}
	return ctx.Buffer.WriteByte(v.Terminator)
}

func choiceForType(vc *schema.VariantChoices, typ reflect.Type) (*schema.Choice, bool) {
	for i := range vc.Choices {
		if vc.Choices[i].Type == typ {
			return &vc.Choices[i], true
		}
	}
	return nil, false
}

// selectVariantType resolves a prefix-tagged (or plain condition-based)
// Choice list to a concrete type, for Object and Array bindings.
// selectDefault is the binding-level fallback (schema.Object/Array's
// SelectDefault), consulted only when vc carries no default of its own.
func selectVariantType(ctx *Context, vc *schema.VariantChoices, selectDefault reflect.Type) (reflect.Type, error) {
	if vc.PrefixLength > 0 {
		raw, err := ctx.Buffer.ReadInteger(vc.PrefixLength, vc.PrefixOrder, false)
		if err != nil {
			return nil, err
		}
		ctx.Eval.PutVariable("prefix", raw)
		defer ctx.Eval.RemoveVariable("prefix")
	}
	for _, choice := range vc.Choices {
		ok, err := ctx.Eval.EvaluateBoolean(choice.Condition, ctx.Root)
		if err != nil {
			return nil, err
		}
		if ok {
			return choice.Type, nil
		}
	}
	if d := variantDefault(vc, selectDefault); d != nil {
		return d, nil
	}
	return nil, schema.NewError(schema.KindNoAlternative, "no variant choice matched and no default type configured")
}

// selectSeparatedType resolves the terminator-tagged dispatch used by
// ListSeparated from the already-peeked tag (the AT_TAG_PEEK state's
// result, §4.8) to a concrete type. selectDefault is ListSeparated's
// binding-level fallback, consulted only when vc has none of its own.
func selectSeparatedType(ctx *Context, vc *schema.VariantChoices, selectDefault reflect.Type, tag string) (reflect.Type, error) {
	ctx.Eval.PutVariable("prefix", tag)
	defer ctx.Eval.RemoveVariable("prefix")
	for _, choice := range vc.Choices {
		ok, err := ctx.Eval.EvaluateBoolean(choice.Condition, ctx.Root)
		if err != nil {
			return nil, err
		}
		if ok {
			return choice.Type, nil
		}
	}
	if d := variantDefault(vc, selectDefault); d != nil {
		return d, nil
	}
	return nil, schema.NewError(schema.KindNoAlternative, "no separated-list variant matched and no default type configured")
}

func variantDefault(vc *schema.VariantChoices, selectDefault reflect.Type) reflect.Type {
	if vc.Default != nil {
		return vc.Default
	}
	return selectDefault
}

// encodeVariantPrefix writes the prefix tag for typ back to the wire, the
// encode-side mirror of selectVariantType's prefix read. Per spec.md §4.4
// the prefix is only written back when the matched choice's condition
// actually referenced #prefix; a choice selected on other grounds (e.g. a
// plain field comparison) leaves no prefix bits to restore.
func encodeVariantPrefix(ctx *Context, vc *schema.VariantChoices, selectDefault reflect.Type, typ reflect.Type) error {
	if vc.PrefixLength == 0 {
		return nil
	}
	choice, found := choiceForType(vc, typ)
	if found && !choice.UsesPrefixVariable() {
		return nil
	}
	switch {
	case found && choice.PrefixValue != nil:
		return ctx.Buffer.WriteInteger(int64(*choice.PrefixValue), vc.PrefixLength, vc.PrefixOrder)
	case typ == variantDefault(vc, selectDefault):
		return schema.NewError(schema.KindInternalError, "variant default type has no declared prefix value to encode")
	default:
		return schema.NewError(schema.KindNoAlternative, fmt.Sprintf("no variant choice declares type %s for encoding", typ))
	}
}
