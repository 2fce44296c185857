// Package engine drives one decode or encode call across a compiled
// Template: header/trailer verification, per-field skip+codec+converter+
// validator, derived-field evaluation, and whole-message checksum
// verification/patching (spec.md §4.7). It owns the struct-reflection
// bridge between a codec's canonical wire values and a user type's actual
// Go field types, so codec itself never needs to know about int8 vs
// int32 vs *big.Int.
package engine

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/dspasibenko/boxon/bitio"
	"github.com/dspasibenko/boxon/codec"
	"github.com/dspasibenko/boxon/eval"
	"github.com/dspasibenko/boxon/schema"
)

// Parser is the TemplateParser: it owns the CodecRegistry and Evaluator
// and recurses through nested types via their own compiled Templates. It
// implements codec.TemplateWalker so Object/Array/ListSeparated bindings
// can call back into it without codec importing this package.
type Parser struct {
	Registry *codec.Registry
	Eval     eval.Evaluator
}

// NewParser builds a Parser over the given registry and evaluator.
func NewParser(registry *codec.Registry, evaluator eval.Evaluator) *Parser {
	return &Parser{Registry: registry, Eval: evaluator}
}

// Parse decodes data into a new *typ value.
func (p *Parser) Parse(typ reflect.Type, data []byte) (any, error) {
	ctx := &codec.Context{Buffer: bitio.NewReader(data), Eval: p.Eval, Walker: p}
	return p.Decode(ctx, typ)
}

// Compose encodes value (addressable through a pointer) against typ's
// compiled Template.
func (p *Parser) Compose(typ reflect.Type, value any) ([]byte, error) {
	buf := bitio.NewWriter()
	ctx := &codec.Context{Buffer: buf, Eval: p.Eval, Walker: p}
	if err := p.Encode(ctx, typ, value); err != nil {
		return nil, err
	}
	buf.Flush()
	return buf.Bytes(), nil
}

// Decode implements codec.TemplateWalker. It is also what Parse and every
// nested Object/Array/ListSeparated element call — per spec.md §4.3(b),
// a nested object is decoded by fully recursing into the TemplateParser,
// header/checksum/trailer included.
func (p *Parser) Decode(ctx *codec.Context, typ reflect.Type) (any, error) {
	tmpl, err := schema.Compile(typ)
	if err != nil {
		return nil, err
	}

	ptr := reflect.New(typ)
	elem := ptr.Elem()
	prevRoot := ctx.Root
	ctx.Root = ptr.Interface()
	defer func() { ctx.Root = prevRoot }()

	if err := p.verifyHeader(ctx, tmpl); err != nil {
		return nil, err
	}
	msgStart := ctx.Buffer.BytePosition()

	for _, f := range tmpl.Fields {
		if err := p.runSkipsDecode(ctx, f.Skips); err != nil {
			return nil, wrapField(err, typ, f.Name)
		}

		c, err := p.Registry.For(f.Binding.Kind())
		if err != nil {
			return nil, wrapField(err, typ, f.Name)
		}
		raw, err := c.Decode(ctx, f.Binding, f.Type)
		if err != nil {
			return nil, wrapField(err, typ, f.Name)
		}

		cc, validator := converterAndValidator(f.Binding)
		conv, err := cc.Resolve(func(expr string) (bool, error) { return p.Eval.EvaluateBoolean(expr, ctx.Root) })
		if err != nil {
			return nil, wrapField(err, typ, f.Name)
		}
		value, err := applyConverterDecode(conv, raw)
		if err != nil {
			return nil, wrapField(schema.Wrap(schema.KindConverterError, "converter failed", err), typ, f.Name)
		}
		if validator == nil {
			validator = schema.AlwaysValid{}
		}
		if !validator.IsValid(value) {
			return nil, wrapField(schema.NewError(schema.KindValidationFailed, "validator rejected decoded value"), typ, f.Name)
		}

		fv := elem.FieldByName(f.Name)
		if !fv.IsValid() {
			return nil, wrapField(schema.NewError(schema.KindInternalError, "struct has no matching field"), typ, f.Name)
		}
		if err := assignValue(fv, value); err != nil {
			return nil, wrapField(err, typ, f.Name)
		}
	}

	if err := p.evaluateDerived(ctx, tmpl, elem, typ); err != nil {
		return nil, err
	}

	for _, pf := range tmpl.PostProcessed {
		if pf.DecodeApply == nil {
			continue
		}
		v, err := pf.DecodeApply(ctx.Root)
		if err != nil {
			return nil, wrapField(schema.Wrap(schema.KindConverterError, "post-processed decode failed", err), typ, pf.Name)
		}
		fv := elem.FieldByName(pf.Name)
		if fv.IsValid() {
			if err := assignValue(fv, v); err != nil {
				return nil, wrapField(err, typ, pf.Name)
			}
		}
	}

	if tmpl.Checksum != nil {
		if err := p.decodeAndVerifyChecksum(ctx, tmpl, elem, msgStart); err != nil {
			return nil, wrapField(err, typ, tmpl.Checksum.StoreAs)
		}
	}

	if err := p.verifyTrailer(ctx, tmpl); err != nil {
		return nil, err
	}

	return ptr.Interface(), nil
}

// Encode implements codec.TemplateWalker; see Decode for the recursion
// rationale.
func (p *Parser) Encode(ctx *codec.Context, typ reflect.Type, value any) error {
	tmpl, err := schema.Compile(typ)
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return schema.NewError(schema.KindInternalError, "encode received a nil pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return schema.NewError(schema.KindInternalError, fmt.Sprintf("encode expected a struct, got %s", rv.Kind()))
	}
	// Work against an addressable copy so PostProcessedField.EncodeApply
	// and evaluated-field assignment can mutate fields even when the
	// caller passed a struct value rather than a pointer.
	holder := reflect.New(rv.Type())
	holder.Elem().Set(rv)
	elem := holder.Elem()

	prevRoot := ctx.Root
	ctx.Root = holder.Interface()
	defer func() { ctx.Root = prevRoot }()

	if err := p.writeHeader(ctx, tmpl); err != nil {
		return err
	}
	msgStart := ctx.Buffer.BytePosition()

	if err := p.evaluateDerived(ctx, tmpl, elem, typ); err != nil {
		return err
	}

	var checksumOffset = -1

	for _, f := range tmpl.Fields {
		fv := elem.FieldByName(f.Name)
		if !fv.IsValid() {
			return wrapField(schema.NewError(schema.KindInternalError, "struct has no matching field"), typ, f.Name)
		}

		if pf := tmpl.PostProcessedFor(f.Name); pf != nil && pf.EncodeApply != nil {
			nv, err := pf.EncodeApply(ctx.Root)
			if err != nil {
				return wrapField(schema.Wrap(schema.KindConverterError, "post-processed encode failed", err), typ, f.Name)
			}
			if err := assignValue(fv, nv); err != nil {
				return wrapField(err, typ, f.Name)
			}
		}

		if err := p.runSkipsEncode(ctx, f.Skips); err != nil {
			return wrapField(err, typ, f.Name)
		}

		cc, validator := converterAndValidator(f.Binding)
		rawValue := extractValue(fv)
		if validator == nil {
			validator = schema.AlwaysValid{}
		}
		if !validator.IsValid(rawValue) {
			return wrapField(schema.NewError(schema.KindValidationFailed, "validator rejected value before encode"), typ, f.Name)
		}
		conv, err := cc.Resolve(func(expr string) (bool, error) { return p.Eval.EvaluateBoolean(expr, ctx.Root) })
		if err != nil {
			return wrapField(err, typ, f.Name)
		}
		wireValue, err := applyConverterEncode(conv, rawValue)
		if err != nil {
			return wrapField(schema.Wrap(schema.KindConverterError, "converter failed", err), typ, f.Name)
		}

		c, err := p.Registry.For(f.Binding.Kind())
		if err != nil {
			return wrapField(err, typ, f.Name)
		}
		if err := c.Encode(ctx, f.Binding, f.Type, wireValue); err != nil {
			return wrapField(err, typ, f.Name)
		}
	}

	if tmpl.Checksum != nil {
		checksumOffset = ctx.Buffer.BytePosition()
		c, err := p.Registry.For(schema.KindChecksum)
		if err != nil {
			return wrapField(err, typ, tmpl.Checksum.StoreAs)
		}
		if err := c.Encode(ctx, *tmpl.Checksum, nil, uint64(0)); err != nil {
			return wrapField(err, typ, tmpl.Checksum.StoreAs)
		}
	}

	if err := p.writeTrailer(ctx, tmpl); err != nil {
		return err
	}

	if tmpl.Checksum != nil {
		if err := p.patchChecksum(ctx, tmpl, msgStart, checksumOffset); err != nil {
			return wrapField(err, typ, tmpl.Checksum.StoreAs)
		}
	}

	return nil
}

// evaluateDerived computes each EvaluatedField whose write condition
// holds and assigns it into elem. It never touches the wire directly:
// on decode it runs after the last bound field, on encode it runs before
// the bound-field loop so a BoundField sharing its name picks up the
// freshly computed value (spec.md §4.7).
func (p *Parser) evaluateDerived(ctx *codec.Context, tmpl *schema.Template, elem reflect.Value, typ reflect.Type) error {
	for _, ef := range tmpl.Evaluated {
		ok, err := p.Eval.EvaluateBoolean(ef.WriteCondition, ctx.Root)
		if err != nil {
			return wrapField(err, typ, ef.Name)
		}
		if !ok {
			continue
		}
		n, err := p.Eval.EvaluateSize(ef.ValueExpr, ctx.Root)
		if err != nil {
			return wrapField(err, typ, ef.Name)
		}
		fv := elem.FieldByName(ef.Name)
		if fv.IsValid() {
			if err := assignValue(fv, int64(n)); err != nil {
				return wrapField(err, typ, ef.Name)
			}
		}
	}
	return nil
}

func (p *Parser) verifyHeader(ctx *codec.Context, tmpl *schema.Template) error {
	if tmpl.Header == nil || tmpl.Header.Start == "" {
		return nil
	}
	got, err := ctx.Buffer.ReadTextFixed(len(tmpl.Header.Start), tmpl.Header.Charset)
	if err != nil {
		return schema.Wrap(schema.KindNoHeader, "failed to read header", err)
	}
	if got != tmpl.Header.Start {
		return schema.NewError(schema.KindNoHeader, fmt.Sprintf("header mismatch: got %q want %q", got, tmpl.Header.Start))
	}
	return nil
}

func (p *Parser) writeHeader(ctx *codec.Context, tmpl *schema.Template) error {
	if tmpl.Header == nil || tmpl.Header.Start == "" {
		return nil
	}
	return ctx.Buffer.WriteTextFixed(tmpl.Header.Start, len(tmpl.Header.Start), tmpl.Header.Charset)
}

func (p *Parser) verifyTrailer(ctx *codec.Context, tmpl *schema.Template) error {
	if tmpl.Header == nil || tmpl.Header.End == "" {
		return nil
	}
	got, err := ctx.Buffer.ReadTextFixed(len(tmpl.Header.End), tmpl.Header.Charset)
	if err != nil {
		return schema.Wrap(schema.KindNoTrailer, "failed to read trailer", err)
	}
	if got != tmpl.Header.End {
		return schema.NewError(schema.KindNoTrailer, fmt.Sprintf("trailer mismatch: got %q want %q", got, tmpl.Header.End))
	}
	return nil
}

func (p *Parser) writeTrailer(ctx *codec.Context, tmpl *schema.Template) error {
	if tmpl.Header == nil || tmpl.Header.End == "" {
		return nil
	}
	return ctx.Buffer.WriteTextFixed(tmpl.Header.End, len(tmpl.Header.End), tmpl.Header.Charset)
}

func (p *Parser) runSkipsDecode(ctx *codec.Context, skips []schema.Skip) error {
	for _, s := range skips {
		if s.UntilTerminator != nil {
			if _, err := ctx.Buffer.ReadTextUntil(*s.UntilTerminator, "", s.Consume); err != nil {
				return err
			}
			continue
		}
		if err := ctx.Buffer.Skip(s.Bits); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) runSkipsEncode(ctx *codec.Context, skips []schema.Skip) error {
	for _, s := range skips {
		if s.UntilTerminator != nil {
			if s.Consume {
				if err := ctx.Buffer.WriteByte(*s.UntilTerminator); err != nil {
					return err
				}
			}
			continue
		}
		if err := ctx.Buffer.SkipWrite(s.Bits); err != nil {
			return err
		}
	}
	return nil
}

// decodeAndVerifyChecksum reads the checksum's own wire bits — which, unlike
// a BoundField, never appear in tmpl.Fields since a Template carries at most
// one Checksum as a distinct top-level concept — assigns the stored value
// into its StoreAs field, then verifies it against the checksum computed
// over the declared byte range.
func (p *Parser) decodeAndVerifyChecksum(ctx *codec.Context, tmpl *schema.Template, elem reflect.Value, msgStart int) error {
	c := tmpl.Checksum
	chk, err := p.Registry.For(schema.KindChecksum)
	if err != nil {
		return err
	}
	raw, err := chk.Decode(ctx, *c, nil)
	if err != nil {
		return err
	}
	fv := elem.FieldByName(c.StoreAs)
	if !fv.IsValid() {
		return schema.NewError(schema.KindInternalError, "checksum StoreAs field not found")
	}
	if err := assignValue(fv, raw); err != nil {
		return err
	}

	data := ctx.Buffer.Bytes()
	lo, hi := msgStart+c.StartOffset, msgStart+c.EndOffset
	if lo < 0 || hi > len(data) || lo > hi {
		return schema.NewError(schema.KindInternalError, "checksum offsets out of range")
	}
	computed, err := codec.Compute(c, data[lo:hi])
	if err != nil {
		return err
	}
	stored, ok := toInt64Any(raw)
	if !ok {
		return schema.NewError(schema.KindInternalError, "checksum StoreAs field is not an integer")
	}
	if uint64(stored) != computed {
		return schema.NewError(schema.KindChecksumMismatch, fmt.Sprintf("checksum mismatch: stored=%d computed=%d", stored, computed))
	}
	return nil
}

func (p *Parser) patchChecksum(ctx *codec.Context, tmpl *schema.Template, msgStart, checksumOffset int) error {
	if checksumOffset < 0 {
		return schema.NewError(schema.KindInternalError, "checksum field was never written")
	}
	c := tmpl.Checksum
	data := ctx.Buffer.Bytes()
	lo, hi := msgStart+c.StartOffset, msgStart+c.EndOffset
	if lo < 0 || hi > len(data) || lo > hi {
		return schema.NewError(schema.KindInternalError, "checksum offsets out of range")
	}
	computed, err := codec.Compute(c, data[lo:hi])
	if err != nil {
		return err
	}
	width := c.Bits / 8
	patch := make([]byte, width)
	for i := 0; i < width; i++ {
		shift := uint(width-1-i) * 8
		if c.Order == bitio.LittleEndian {
			shift = uint(i) * 8
		}
		patch[i] = byte(computed >> shift)
	}
	return ctx.Buffer.PatchBytes(checksumOffset, patch)
}

func converterAndValidator(b schema.Binding) (schema.ConverterChoices, schema.Validator) {
	switch v := b.(type) {
	case schema.Integer:
		return v.Converter, v.Validator
	case schema.BitSet:
		return v.Converter, v.Validator
	case schema.StringFixed:
		return v.Converter, v.Validator
	case schema.StringTerminated:
		return v.Converter, v.Validator
	case schema.Object:
		return v.Converter, v.Validator
	case schema.Array:
		return v.Converter, v.Validator
	case schema.ListSeparated:
		return v.Converter, v.Validator
	}
	return schema.ConverterChoices{}, nil
}

func applyConverterDecode(conv schema.Converter, raw any) (any, error) {
	if items, ok := raw.([]any); ok {
		out := make([]any, len(items))
		for i, it := range items {
			v, err := conv.Decode(it)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return conv.Decode(raw)
}

func applyConverterEncode(conv schema.Converter, value any) (any, error) {
	if items, ok := value.([]any); ok {
		out := make([]any, len(items))
		for i, it := range items {
			v, err := conv.Encode(it)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return conv.Encode(value)
}

func wrapField(err error, typ reflect.Type, field string) error {
	if se, ok := err.(*schema.Error); ok {
		return se.WithField(typ.Name(), field)
	}
	if err == bitio.ErrUnexpectedEOF {
		return schema.Wrap(schema.KindUnexpectedEOF, "unexpected end of buffer", err).WithField(typ.Name(), field)
	}
	return schema.Wrap(schema.KindInternalError, "unexpected error", err).WithField(typ.Name(), field)
}

// assignValue stores src (one of the canonical wire-value types a codec
// produces) into the addressable struct field dst, converting to dst's
// actual declared type.
func assignValue(dst reflect.Value, src any) error {
	if src == nil {
		return nil
	}
	if dst.Kind() == reflect.Slice {
		items, ok := src.([]any)
		if !ok {
			return schema.NewError(schema.KindInternalError, fmt.Sprintf("expected a collection value for slice field, got %T", src))
		}
		out := reflect.MakeSlice(dst.Type(), len(items), len(items))
		for i, item := range items {
			if err := assignValue(out.Index(i), item); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil
	}

	sv := reflect.ValueOf(src)

	if dst.Kind() == reflect.Ptr {
		if sv.Kind() == reflect.Ptr {
			if sv.Type().AssignableTo(dst.Type()) {
				dst.Set(sv)
				return nil
			}
		}
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return assignValue(dst.Elem(), src)
	}

	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}

	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := toInt64Any(src)
		if !ok {
			return schema.NewError(schema.KindInternalError, fmt.Sprintf("cannot assign %T to %s", src, dst.Type()))
		}
		dst.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := toInt64Any(src)
		if !ok {
			return schema.NewError(schema.KindInternalError, fmt.Sprintf("cannot assign %T to %s", src, dst.Type()))
		}
		dst.SetUint(uint64(n))
		return nil
	case reflect.Struct:
		if sv.Kind() == reflect.Ptr && !sv.IsNil() && sv.Elem().Type() == dst.Type() {
			dst.Set(sv.Elem())
			return nil
		}
	}

	if sv.Type().ConvertibleTo(dst.Type()) {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}
	return schema.NewError(schema.KindInternalError, fmt.Sprintf("cannot assign %T to %s", src, dst.Type()))
}

// extractValue reads an addressable struct field down to the canonical
// wire-value form a codec's Encode expects.
func extractValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Slice:
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = extractValue(v.Index(i))
		}
		return out
	case reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		return v.Interface()
	case reflect.Struct:
		if v.CanAddr() {
			return v.Addr().Interface()
		}
		cp := reflect.New(v.Type())
		cp.Elem().Set(v)
		return cp.Interface()
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	}
	return v.Interface()
}

func toInt64Any(src any) (int64, bool) {
	switch v := src.(type) {
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	case int:
		return int64(v), true
	case *big.Int:
		return v.Int64(), true
	}
	rv := reflect.ValueOf(src)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	}
	return 0, false
}
