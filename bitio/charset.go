package bitio

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// charsets holds the named encodings beyond the natively-handled UTF-8/ASCII
// pair. Names are matched case-insensitively.
var charsets = map[string]encoding.Encoding{
	"ISO-8859-1": charmap.ISO8859_1,
	"LATIN1":     charmap.ISO8859_1,
	"UTF-16":     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	"UTF-16BE":   unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"UTF-16LE":   unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
}

// KnownCharset reports whether name is a charset the buffer can read and
// write text in. Used by the template compiler's schema validation pass.
func KnownCharset(name string) bool {
	switch strings.ToUpper(name) {
	case "", "UTF-8", "ASCII", "US-ASCII":
		return true
	}
	_, ok := charsets[strings.ToUpper(name)]
	return ok
}

func encodeText(s, charset string) ([]byte, error) {
	switch strings.ToUpper(charset) {
	case "", "UTF-8", "ASCII", "US-ASCII":
		return []byte(s), nil
	}
	enc, ok := charsets[strings.ToUpper(charset)]
	if !ok {
		return nil, ErrUnknownCharset
	}
	return enc.NewEncoder().Bytes([]byte(s))
}

func decodeText(b []byte, charset string) (string, error) {
	switch strings.ToUpper(charset) {
	case "", "UTF-8", "ASCII", "US-ASCII":
		return string(b), nil
	}
	enc, ok := charsets[strings.ToUpper(charset)]
	if !ok {
		return "", ErrUnknownCharset
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
