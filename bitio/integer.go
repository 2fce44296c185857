package bitio

import "math/big"

// ReadInteger reads n bits (1..64) and reinterprets them as an integer of
// the given byte order and signedness. BIG_ENDIAN packs the value MS-first
// as one bit run. LITTLE_ENDIAN packs the same MS-first run into ceil(n/8)
// logical bytes (the odd leading bits forming the most-significant, partial
// byte) and reverses byte order, per spec.md §6 — this applies regardless
// of whether n is a multiple of 8.
func (b *Buffer) ReadInteger(n int, order ByteOrder, signed bool) (int64, error) {
	if n <= 0 || n > 64 {
		return 0, ErrInvalidWidth
	}
	v, err := b.readOrdered(n, order)
	if err != nil {
		return 0, err
	}
	if signed && n < 64 && v&(uint64(1)<<uint(n-1)) != 0 {
		return int64(v) - (int64(1) << uint(n)), nil
	}
	return int64(v), nil
}

// WriteInteger writes the low n bits (1..64) of value using the given byte
// order. Negative values are first reduced to their two's-complement
// representation on n bits.
func (b *Buffer) WriteInteger(value int64, n int, order ByteOrder) error {
	if n <= 0 || n > 64 {
		return ErrInvalidWidth
	}
	var mask uint64
	if n == 64 {
		mask = ^uint64(0)
	} else {
		mask = uint64(1)<<uint(n) - 1
	}
	return b.writeOrdered(uint64(value)&mask, n, order)
}

// readOrdered reads the MS-first packing directly for BigEndian. For
// LittleEndian it reads the ceil(n/8) logical bytes least-significant-byte
// first (the wire order after reversal), then reassembles them MS-first:
// the last byte read is the partial, most-significant one whenever n isn't
// a multiple of 8.
func (b *Buffer) readOrdered(n int, order ByteOrder) (uint64, error) {
	if order == BigEndian {
		return b.ReadBits(n)
	}
	nBytes := (n + 7) / 8
	topBits := n - (nBytes-1)*8
	chunks := make([]uint64, nBytes)
	for i := nBytes - 1; i >= 1; i-- {
		byt, err := b.ReadBits(8)
		if err != nil {
			return 0, err
		}
		chunks[i] = byt
	}
	top, err := b.ReadBits(topBits)
	if err != nil {
		return 0, err
	}
	chunks[0] = top
	var v uint64
	for i := 0; i < nBytes; i++ {
		v |= chunks[i] << uint(8*(nBytes-1-i))
	}
	return v, nil
}

// writeOrdered is readOrdered's write-side mirror: it writes the same
// ceil(n/8) logical bytes least-significant-byte first for LittleEndian,
// ending with the partial, most-significant byte.
func (b *Buffer) writeOrdered(v uint64, n int, order ByteOrder) error {
	if order == BigEndian {
		return b.WriteBits(v, n)
	}
	nBytes := (n + 7) / 8
	topBits := n - (nBytes-1)*8
	for i := nBytes - 1; i >= 1; i-- {
		if err := b.WriteBits((v>>uint(8*(nBytes-1-i)))&0xFF, 8); err != nil {
			return err
		}
	}
	top := (v >> uint(8*(nBytes-1))) & (uint64(1)<<uint(topBits) - 1)
	return b.WriteBits(top, topBits)
}

// ReadBigInteger extends ReadInteger to widths up to 128 bits, returning a
// signed two's-complement *big.Int.
func (b *Buffer) ReadBigInteger(n int, order ByteOrder) (*big.Int, error) {
	if n <= 0 || n > 128 {
		return nil, ErrInvalidWidth
	}
	if n <= 64 {
		v, err := b.ReadInteger(n, order, true)
		if err != nil {
			return nil, err
		}
		return big.NewInt(v), nil
	}

	hiBits := n - 64
	var hi, lo uint64
	var err error
	if order == BigEndian {
		hi, err = b.readOrdered(hiBits, order)
		if err != nil {
			return nil, err
		}
		lo, err = b.readOrdered(64, order)
		if err != nil {
			return nil, err
		}
	} else {
		lo, err = b.readOrdered(64, order)
		if err != nil {
			return nil, err
		}
		hi, err = b.readOrdered(hiBits, order)
		if err != nil {
			return nil, err
		}
	}

	unsigned := new(big.Int).Lsh(big.NewInt(0).SetUint64(hi), 64)
	unsigned.Or(unsigned, new(big.Int).SetUint64(lo))

	if hi&(uint64(1)<<uint(hiBits-1)) != 0 {
		full := new(big.Int).Lsh(big.NewInt(1), uint(n))
		unsigned.Sub(unsigned, full)
	}
	return unsigned, nil
}

// WriteBigInteger is the write-side counterpart of ReadBigInteger.
func (b *Buffer) WriteBigInteger(v *big.Int, n int, order ByteOrder) error {
	if n <= 0 || n > 128 {
		return ErrInvalidWidth
	}
	if n <= 64 {
		return b.WriteInteger(v.Int64(), n, order)
	}

	mod := new(big.Int).Lsh(big.NewInt(1), uint(n))
	unsigned := new(big.Int).Mod(v, mod)

	lo := new(big.Int).And(unsigned, new(big.Int).SetUint64(^uint64(0))).Uint64()
	hi := new(big.Int).Rsh(unsigned, 64).Uint64()
	hiBits := n - 64

	if order == BigEndian {
		if err := b.writeOrdered(hi, hiBits, order); err != nil {
			return err
		}
		return b.writeOrdered(lo, 64, order)
	}
	if err := b.writeOrdered(lo, 64, order); err != nil {
		return err
	}
	return b.writeOrdered(hi, hiBits, order)
}
