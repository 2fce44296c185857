package bitio

import "math"

// ReadByte reads one byte-aligned byte.
func (b *Buffer) ReadByte() (byte, error) {
	v, err := b.ReadBits(8)
	return byte(v), err
}

// ReadShort/ReadInt/ReadLong are convenience wrappers over ReadInteger at
// fixed native widths, each defined as a signed read of that width.
func (b *Buffer) ReadShort(order ByteOrder) (int16, error) {
	v, err := b.ReadInteger(16, order, true)
	return int16(v), err
}

func (b *Buffer) ReadInt(order ByteOrder) (int32, error) {
	v, err := b.ReadInteger(32, order, true)
	return int32(v), err
}

func (b *Buffer) ReadLong(order ByteOrder) (int64, error) {
	return b.ReadInteger(64, order, true)
}

// ReadFloat and ReadDouble reinterpret a 32/64-bit read as IEEE-754.
func (b *Buffer) ReadFloat(order ByteOrder) (float32, error) {
	v, err := b.ReadInteger(32, order, false)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

func (b *Buffer) ReadDouble(order ByteOrder) (float64, error) {
	v, err := b.ReadInteger(64, order, false)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}

func (b *Buffer) WriteShort(v int16, order ByteOrder) error {
	return b.WriteInteger(int64(v), 16, order)
}

func (b *Buffer) WriteInt(v int32, order ByteOrder) error {
	return b.WriteInteger(int64(v), 32, order)
}

func (b *Buffer) WriteLong(v int64, order ByteOrder) error {
	return b.WriteInteger(v, 64, order)
}

func (b *Buffer) WriteFloat(v float32, order ByteOrder) error {
	return b.WriteInteger(int64(math.Float32bits(v)), 32, order)
}

func (b *Buffer) WriteDouble(v float64, order ByteOrder) error {
	return b.WriteInteger(int64(math.Float64bits(v)), 64, order)
}
