package boxon

import "github.com/dspasibenko/boxon/schema"

// Error is the taxonomy-carrying error type every Core method returns on
// failure. It is schema.Error itself, not a copy or a wrapper: codec,
// engine and schema already construct and propagate this exact type, and
// the engine wraps bitio's plain sentinel errors into it, so re-exporting
// it here avoids an adapter that would otherwise just forward
// Kind/Class/Field/Unwrap.
type Error = schema.Error

// Kind is the error taxonomy from spec.md §7.
type Kind = schema.ErrorKind

const (
	KindAnnotationError  = schema.KindAnnotationError
	KindUnexpectedEOF    = schema.KindUnexpectedEOF
	KindNoAlternative    = schema.KindNoAlternative
	KindSizeMismatch     = schema.KindSizeMismatch
	KindValidationFailed = schema.KindValidationFailed
	KindConverterError   = schema.KindConverterError
	KindChecksumMismatch = schema.KindChecksumMismatch
	KindNoHeader         = schema.KindNoHeader
	KindNoTrailer        = schema.KindNoTrailer
	KindInternalError    = schema.KindInternalError
)

// Sentinel errors for errors.Is(err, boxon.ErrChecksumMismatch)-style
// checks: schema.Error.Is compares only Kind, so a bare Kind-only Error
// value is a valid match target regardless of the Class/Field/Cause the
// real error carries.
var (
	ErrAnnotationError  = &schema.Error{Kind: schema.KindAnnotationError}
	ErrUnexpectedEOF    = &schema.Error{Kind: schema.KindUnexpectedEOF}
	ErrNoAlternative    = &schema.Error{Kind: schema.KindNoAlternative}
	ErrSizeMismatch     = &schema.Error{Kind: schema.KindSizeMismatch}
	ErrValidationFailed = &schema.Error{Kind: schema.KindValidationFailed}
	ErrConverterError   = &schema.Error{Kind: schema.KindConverterError}
	ErrChecksumMismatch = &schema.Error{Kind: schema.KindChecksumMismatch}
	ErrNoHeader         = &schema.Error{Kind: schema.KindNoHeader}
	ErrNoTrailer        = &schema.Error{Kind: schema.KindNoTrailer}
	ErrInternalError    = &schema.Error{Kind: schema.KindInternalError}
)
