package bitio

import "errors"

// ErrUnexpectedEOF is returned when a read operation needs more bits than
// remain in the buffer.
var ErrUnexpectedEOF = errors.New("bitio: unexpected end of buffer")

// ErrInvalidWidth is returned when a caller asks for a bit width outside the
// range a given operation supports.
var ErrInvalidWidth = errors.New("bitio: invalid bit width")

// ErrUnknownCharset is returned by text operations given a charset name the
// buffer does not recognize.
var ErrUnknownCharset = errors.New("bitio: unknown charset")
