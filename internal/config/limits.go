// Package config centralizes the numeric limits the compiler enforces
// against binding declarations (spec.md §4.6). Keeping them in one place
// means a future protocol revision touches one file instead of every
// binding-kind validator in schema.
package config

const (
	// MinIntegerBits and MaxIntegerBits bound an Integer binding's declared
	// width. Above 64 bits bitio switches to math/big arithmetic.
	MinIntegerBits = 1
	MaxIntegerBits = 128

	// MinChecksumBits and MaxChecksumBits bound a Checksum binding's
	// declared width; the supported algorithms top out at 64 bits.
	MinChecksumBits = 8
	MaxChecksumBits = 64

	// MaxPrefixLength bounds a VariantChoices prefix-tag width in bits.
	MaxPrefixLength = 32
)
