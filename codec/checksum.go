package codec

import (
	"fmt"
	"hash/crc32"
	"reflect"

	"github.com/dspasibenko/boxon/schema"
)

// ChecksumCodec codes the raw stored checksum value. It does not compute
// or verify the checksum itself — that needs the full message's raw
// bytes, which only the engine's encode/decode driver has once a message
// is fully read or flushed — it only reads/writes the declared-width
// integer at the checksum field's wire position.
type ChecksumCodec struct{}

func (c *ChecksumCodec) Decode(ctx *Context, binding schema.Binding, fieldType reflect.Type) (any, error) {
	v, ok := binding.(schema.Checksum)
	if !ok {
		return nil, schema.NewError(schema.KindInternalError, fmt.Sprintf("checksum codec cannot handle %s", binding.Kind()))
	}
	raw, err := ctx.Buffer.ReadInteger(v.Bits, v.Order, false)
	if err != nil {
		return nil, err
	}
	return uint64(raw), nil
}

func (c *ChecksumCodec) Encode(ctx *Context, binding schema.Binding, fieldType reflect.Type, value any) error {
	v, ok := binding.(schema.Checksum)
	if !ok {
		return schema.NewError(schema.KindInternalError, fmt.Sprintf("checksum codec cannot handle %s", binding.Kind()))
	}
	iv, ok := toInt64(value)
	if !ok {
		return schema.NewError(schema.KindInternalError, "checksum encode expected an integer value")
	}
	return ctx.Buffer.WriteInteger(iv, v.Bits, v.Order)
}

// Compute evaluates c.Algorithm over data, right-justified in a uint64 so
// the result can be written back with the same WriteInteger path a
// decoded value would take. CRC-32 is hash/crc32's IEEE polynomial; CRC-8
// and CRC-16 have no standard-library implementation, so they are
// hand-rolled here (CRC-8/SMBUS and CRC-16/ARC, both common choices for
// short device-protocol frames).
func Compute(c *schema.Checksum, data []byte) (uint64, error) {
	switch c.Algorithm {
	case "CRC-8":
		return uint64(crc8(data)), nil
	case "CRC-16":
		return uint64(crc16(data)), nil
	case "CRC-32":
		return uint64(crc32.ChecksumIEEE(data)), nil
	case "ADDITIVE":
		var sum uint64
		for _, b := range data {
			sum += uint64(b)
		}
		return sum & widthMask(c.Bits), nil
	}
	return 0, schema.NewError(schema.KindInternalError, fmt.Sprintf("unknown checksum algorithm %q", c.Algorithm))
}

func widthMask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(bits) - 1
}

// crc8 computes CRC-8/SMBUS: polynomial 0x07, init 0x00, no reflection.
func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// crc16 computes CRC-16/ARC: polynomial 0x8005 reflected (0xA001), init
// 0x0000, input/output reflected.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
