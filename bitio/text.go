package bitio

// readState is a snapshot of the reader cursor, used to implement peeking
// and the "don't consume the terminator" mode of ReadTextUntil.
type readState struct {
	readByte      int
	readCache     byte
	readRemaining int
}

func (b *Buffer) saveReadState() readState {
	return readState{b.readByte, b.readCache, b.readRemaining}
}

func (b *Buffer) restoreReadState(s readState) {
	b.readByte, b.readCache, b.readRemaining = s.readByte, s.readCache, s.readRemaining
}

// ReadTextFixed reads exactly byteCount bytes and decodes them in charset.
func (b *Buffer) ReadTextFixed(byteCount int, charset string) (string, error) {
	raw, err := b.ReadBytes(byteCount)
	if err != nil {
		return "", err
	}
	return decodeText(raw, charset)
}

// WriteTextFixed encodes s and writes at most byteCount bytes: truncated if
// the encoded form is longer, and NOT padded if shorter. This repository's
// chosen policy for the fixed-length encoding open question (see
// DESIGN.md): truncate on write, never pad, so a short string leaves the
// field's declared width only partially written — callers that need a
// fully-populated fixed field are expected to pad the Go string themselves
// before encoding.
func (b *Buffer) WriteTextFixed(s string, byteCount int, charset string) error {
	raw, err := encodeText(s, charset)
	if err != nil {
		return err
	}
	if len(raw) > byteCount {
		raw = raw[:byteCount]
	}
	return b.WriteBytes(raw)
}

// WriteText encodes and writes s with no declared length, used for
// terminated strings before the terminator itself is appended.
func (b *Buffer) WriteText(s, charset string) error {
	raw, err := encodeText(s, charset)
	if err != nil {
		return err
	}
	return b.WriteBytes(raw)
}

// ReadTextUntil reads bytes until the first occurrence of terminator. If
// consume is true the terminator is read past; otherwise the reader is left
// positioned on it. Running out of buffer before finding terminator is
// always an UnexpectedEof — the chosen, internally consistent resolution of
// the "terminator absent" open question (see DESIGN.md).
func (b *Buffer) ReadTextUntil(terminator byte, charset string, consume bool) (string, error) {
	var raw []byte
	for {
		if b.BitsRemaining() < 8 {
			return "", ErrUnexpectedEOF
		}
		saved := b.saveReadState()
		v, err := b.ReadBits(8)
		if err != nil {
			return "", err
		}
		if byte(v) == terminator {
			if !consume {
				b.restoreReadState(saved)
			}
			return decodeText(raw, charset)
		}
		raw = append(raw, byte(v))
	}
}

// PeekTextUntil behaves like ReadTextUntil(terminator, charset, false) but
// never advances the reader, even past the scanned text.
func (b *Buffer) PeekTextUntil(terminator byte, charset string) (string, error) {
	saved := b.saveReadState()
	s, err := b.ReadTextUntil(terminator, charset, false)
	b.restoreReadState(saved)
	return s, err
}
