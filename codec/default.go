package codec

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/dspasibenko/boxon/bitio"
	"github.com/dspasibenko/boxon/schema"
)

// DefaultCodec codes the four scalar binding kinds: Integer, BitSet,
// StringFixed and StringTerminated. A non-empty Collection size
// expression turns any of them into a fixed-count run of the same
// element, decoded/encoded as a []any of the element's canonical value.
type DefaultCodec struct{}

func (c *DefaultCodec) Decode(ctx *Context, binding schema.Binding, fieldType reflect.Type) (any, error) {
	switch v := binding.(type) {
	case schema.Integer:
		return decodeCollection(ctx, v.Collection, func() (any, error) { return decodeInteger(ctx, v) })
	case schema.BitSet:
		return decodeCollection(ctx, v.Collection, func() (any, error) { return decodeBitSet(ctx, v) })
	case schema.StringFixed:
		return decodeCollection(ctx, v.Collection, func() (any, error) { return decodeStringFixed(ctx, v) })
	case schema.StringTerminated:
		return decodeCollection(ctx, v.Collection, func() (any, error) { return decodeStringTerminated(ctx, v) })
	}
	return nil, schema.NewError(schema.KindInternalError, fmt.Sprintf("default codec cannot handle %s", binding.Kind()))
}

func (c *DefaultCodec) Encode(ctx *Context, binding schema.Binding, fieldType reflect.Type, value any) error {
	switch v := binding.(type) {
	case schema.Integer:
		return encodeCollection(ctx, v.Collection, value, func(elem any) error { return encodeInteger(ctx, v, elem) })
	case schema.BitSet:
		return encodeCollection(ctx, v.Collection, value, func(elem any) error { return encodeBitSet(ctx, v, elem) })
	case schema.StringFixed:
		return encodeCollection(ctx, v.Collection, value, func(elem any) error { return encodeStringFixed(ctx, v, elem) })
	case schema.StringTerminated:
		return encodeCollection(ctx, v.Collection, value, func(elem any) error { return encodeStringTerminated(ctx, v, elem) })
	}
	return schema.NewError(schema.KindInternalError, fmt.Sprintf("default codec cannot handle %s", binding.Kind()))
}

func decodeCollection(ctx *Context, collectionExpr string, one func() (any, error)) (any, error) {
	if collectionExpr == "" {
		return one()
	}
	n, err := ctx.Eval.EvaluateSize(collectionExpr, ctx.Root)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, schema.NewError(schema.KindSizeMismatch, "collection size expression did not resolve to a count")
	}
	out := make([]any, n)
	for i := range out {
		v, err := one()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func encodeCollection(ctx *Context, collectionExpr string, value any, one func(elem any) error) error {
	if collectionExpr == "" {
		return one(value)
	}
	items, ok := value.([]any)
	if !ok {
		return schema.NewError(schema.KindInternalError, "collection encode expected []any")
	}
	for _, item := range items {
		if err := one(item); err != nil {
			return err
		}
	}
	return nil
}

func evaluatedWidth(ctx *Context, sizeExpr string) (int, error) {
	n, err := ctx.Eval.EvaluateSize(sizeExpr, ctx.Root)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, schema.NewError(schema.KindSizeMismatch, "size expression did not resolve to a positive width")
	}
	return n, nil
}

func decodeInteger(ctx *Context, v schema.Integer) (any, error) {
	n, err := evaluatedWidth(ctx, v.SizeExpr)
	if err != nil {
		return nil, err
	}
	if n > 64 {
		return ctx.Buffer.ReadBigInteger(n, v.Order)
	}
	return ctx.Buffer.ReadInteger(n, v.Order, v.Signed)
}

func encodeInteger(ctx *Context, v schema.Integer, value any) error {
	n, err := evaluatedWidth(ctx, v.SizeExpr)
	if err != nil {
		return err
	}
	if n > 64 {
		bi, ok := value.(*big.Int)
		if !ok {
			return schema.NewError(schema.KindInternalError, "integer encode expected *big.Int for widths over 64 bits")
		}
		return ctx.Buffer.WriteBigInteger(bi, n, v.Order)
	}
	iv, ok := toInt64(value)
	if !ok {
		return schema.NewError(schema.KindInternalError, fmt.Sprintf("integer encode expected an integer value, got %T", value))
	}
	return ctx.Buffer.WriteInteger(iv, n, v.Order)
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	}
	return 0, false
}

func decodeBitSet(ctx *Context, v schema.BitSet) (any, error) {
	n, err := evaluatedWidth(ctx, v.SizeExpr)
	if err != nil {
		return nil, err
	}
	return ctx.Buffer.ReadBitSet(n, v.Order)
}

func encodeBitSet(ctx *Context, v schema.BitSet, value any) error {
	set, ok := value.(*bitio.Set)
	if !ok {
		return schema.NewError(schema.KindInternalError, "bitset encode expected a *bitio.Set")
	}
	n, err := evaluatedWidth(ctx, v.SizeExpr)
	if err != nil {
		return err
	}
	if set.Len() != n {
		return schema.NewError(schema.KindSizeMismatch, fmt.Sprintf("bitset has %d bits, declared width is %d", set.Len(), n))
	}
	return ctx.Buffer.WriteBitSet(set, v.Order)
}

func decodeStringFixed(ctx *Context, v schema.StringFixed) (any, error) {
	n, err := evaluatedWidth(ctx, v.SizeExpr)
	if err != nil {
		return nil, err
	}
	return ctx.Buffer.ReadTextFixed(n, v.Charset)
}

func encodeStringFixed(ctx *Context, v schema.StringFixed, value any) error {
	n, err := evaluatedWidth(ctx, v.SizeExpr)
	if err != nil {
		return err
	}
	s, ok := value.(string)
	if !ok {
		return schema.NewError(schema.KindInternalError, "string-fixed encode expected a string")
	}
	return ctx.Buffer.WriteTextFixed(s, n, v.Charset)
}

func decodeStringTerminated(ctx *Context, v schema.StringTerminated) (any, error) {
	return ctx.Buffer.ReadTextUntil(v.Terminator, v.Charset, v.ConsumeTerminator)
}

func encodeStringTerminated(ctx *Context, v schema.StringTerminated, value any) error {
	s, ok := value.(string)
	if !ok {
		return schema.NewError(schema.KindInternalError, "string-terminated encode expected a string")
	}
	if err := ctx.Buffer.WriteText(s, v.Charset); err != nil {
		return err
	}
	return ctx.Buffer.WriteByte(v.Terminator)
}
