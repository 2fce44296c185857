package schema

import "fmt"

// ErrorKind is the error taxonomy from spec.md §7, shared by every layer
// of the engine so a single Error type can flow from a deeply nested
// codec call back up to the public API unchanged.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAnnotationError
	KindUnexpectedEOF
	KindNoAlternative
	KindSizeMismatch
	KindValidationFailed
	KindConverterError
	KindChecksumMismatch
	KindNoHeader
	KindNoTrailer
	KindInternalError
)

func (k ErrorKind) String() string {
	switch k {
	case KindAnnotationError:
		return "AnnotationError"
	case KindUnexpectedEOF:
		return "UnexpectedEof"
	case KindNoAlternative:
		return "NoAlternative"
	case KindSizeMismatch:
		return "SizeMismatch"
	case KindValidationFailed:
		return "ValidationFailed"
	case KindConverterError:
		return "ConverterError"
	case KindChecksumMismatch:
		return "ChecksumMismatch"
	case KindNoHeader:
		return "NoHeader"
	case KindNoTrailer:
		return "NoTrailer"
	case KindInternalError:
		return "InternalError"
	}
	return "Unknown"
}

// Error is the taxonomy-carrying error type returned across every package
// boundary in this module. The TemplateParser wraps a codec's Error with
// the owning field name and type as it propagates (spec.md §7).
type Error struct {
	Kind  ErrorKind
	Class string // the user type name, when known
	Field string // the offending field name, when known
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	loc := ""
	switch {
	case e.Class != "" && e.Field != "":
		loc = fmt.Sprintf(" (%s.%s)", e.Class, e.Field)
	case e.Class != "":
		loc = fmt.Sprintf(" (%s)", e.Class)
	case e.Field != "":
		loc = fmt.Sprintf(" (field %s)", e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s%s: %v", e.Kind, e.Msg, loc, e.Cause)
	}
	return fmt.Sprintf("%s: %s%s", e.Kind, e.Msg, loc)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is against a bare Kind-only Error, e.g.
// errors.Is(err, &schema.Error{Kind: schema.KindChecksumMismatch}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError constructs an Error of the given kind.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs an Error of the given kind wrapping cause.
func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// WithField returns a copy of e annotated with the owning field name,
// matching the propagation rule in spec.md §7: codecs surface errors
// unchanged, and the TemplateParser wraps them with field/class context.
func (e *Error) WithField(class, field string) *Error {
	cp := *e
	if cp.Class == "" {
		cp.Class = class
	}
	if cp.Field == "" {
		cp.Field = field
	}
	return &cp
}
