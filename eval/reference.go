package eval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Reference is a small, precedence-climbing-grade evaluator good enough
// for real schemas: dotted paths into the root object, #-prefixed named
// variables, integer/string/boolean literals, comparisons and boolean
// connectives. It is one possible Evaluator; nothing in the engine
// packages requires this particular syntax.
type Reference struct {
	vars map[string]any
}

// NewReference returns a ready-to-use reference evaluator.
func NewReference() *Reference {
	return &Reference{vars: make(map[string]any)}
}

func (r *Reference) PutVariable(name string, value any) {
	r.vars[name] = value
}

func (r *Reference) RemoveVariable(name string) {
	delete(r.vars, name)
}

func (r *Reference) EvaluateBoolean(expr string, root any) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}
	v, err := r.evaluate(expr, root)
	if err != nil {
		return false, err
	}
	return toBool(v), nil
}

func (r *Reference) EvaluateSize(expr string, root any) (int, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return -1, nil
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return n, nil
	}
	v, err := r.evaluate(expr, root)
	if err != nil {
		return 0, err
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, fmt.Errorf("eval: expression %q did not evaluate to an integer", expr)
	}
	return int(n), nil
}

func (r *Reference) evaluate(expr string, root any) (any, error) {
	ast, err := parseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("eval: %q: %w", expr, err)
	}
	return r.evalOr(ast.Or, root)
}

func (r *Reference) evalOr(e *orExpr, root any) (any, error) {
	v, err := r.evalAnd(e.Left, root)
	if err != nil || len(e.Rest) == 0 {
		return v, err
	}
	result := toBool(v)
	for _, rest := range e.Rest {
		rv, err := r.evalAnd(rest, root)
		if err != nil {
			return nil, err
		}
		result = result || toBool(rv)
	}
	return result, nil
}

func (r *Reference) evalAnd(e *andExpr, root any) (any, error) {
	v, err := r.evalNot(e.Left, root)
	if err != nil || len(e.Rest) == 0 {
		return v, err
	}
	result := toBool(v)
	for _, rest := range e.Rest {
		rv, err := r.evalNot(rest, root)
		if err != nil {
			return nil, err
		}
		result = result && toBool(rv)
	}
	return result, nil
}

func (r *Reference) evalNot(e *notExpr, root any) (any, error) {
	v, err := r.evalComparison(e.Cmp, root)
	if err != nil {
		return nil, err
	}
	if e.Negate {
		return !toBool(v), nil
	}
	return v, nil
}

func (r *Reference) evalComparison(e *comparison, root any) (any, error) {
	left, err := r.evalOperand(e.Left, root)
	if err != nil {
		return nil, err
	}
	if e.Op == nil {
		return left, nil
	}
	right, err := r.evalOperand(e.Right, root)
	if err != nil {
		return nil, err
	}
	return compare(*e.Op, left, right)
}

func (r *Reference) evalOperand(o *operand, root any) (any, error) {
	switch {
	case o.Number != nil:
		return *o.Number, nil
	case o.Str != nil:
		s, err := strconv.Unquote(*o.Str)
		if err != nil {
			return nil, fmt.Errorf("eval: invalid string literal %s: %w", *o.Str, err)
		}
		return s, nil
	case o.Bool != nil:
		return *o.Bool == "true", nil
	case o.Variable != nil:
		name := strings.TrimPrefix(*o.Variable, "#")
		v, ok := r.vars[name]
		if !ok {
			return nil, fmt.Errorf("eval: unknown variable %s", *o.Variable)
		}
		return v, nil
	case o.Path != nil:
		return resolvePath(root, *o.Path)
	}
	return nil, fmt.Errorf("eval: empty operand")
}

func resolvePath(root any, path string) (any, error) {
	segs := strings.Split(path, ".")
	if len(segs) > 0 && segs[0] == "self" {
		segs = segs[1:]
	}
	v := reflect.ValueOf(root)
	for _, seg := range segs {
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, fmt.Errorf("eval: nil pointer navigating %q", path)
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return nil, fmt.Errorf("eval: cannot navigate %q: %s is not a struct", path, seg)
		}
		fv := v.FieldByName(seg)
		if !fv.IsValid() {
			return nil, fmt.Errorf("eval: unknown field %q in path %q", seg, path)
		}
		v = fv
	}
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, nil
	}
	return v.Interface(), nil
}

func compare(op string, l, r any) (bool, error) {
	if li, lok := toInt64(l); lok {
		if ri, rok := toInt64(r); rok {
			switch op {
			case "==":
				return li == ri, nil
			case "!=":
				return li != ri, nil
			case "<":
				return li < ri, nil
			case "<=":
				return li <= ri, nil
			case ">":
				return li > ri, nil
			case ">=":
				return li >= ri, nil
			}
		}
	}
	if ls, lok := l.(string); lok {
		if rs, rok := r.(string); rok {
			switch op {
			case "==":
				return ls == rs, nil
			case "!=":
				return ls != rs, nil
			}
			return false, fmt.Errorf("eval: operator %s is not supported for strings", op)
		}
	}
	switch op {
	case "==":
		return reflect.DeepEqual(l, r), nil
	case "!=":
		return !reflect.DeepEqual(l, r), nil
	}
	return false, fmt.Errorf("eval: cannot compare %v %s %v", l, op, r)
}

func toBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	default:
		if n, ok := toInt64(v); ok {
			return n != 0
		}
	}
	return v != nil
}

func toInt64(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	}
	return 0, false
}
