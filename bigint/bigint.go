// Package bigint supplies the handful of constructors and canonical byte
// encodings the VDF engine needs on top of math/big. Every arithmetic
// operation the engine requires (add, subtract, multiply, mod, shifts,
// bitwise and, bit length, comparison, equality) is already exactly what
// *big.Int provides, so this package does not wrap *big.Int in a new type --
// it adds only the decimal/hex parsing and the transcript-grade byte
// encodings that spec'd behavior beyond the stdlib's own Bytes()/SetString().
package bigint

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrInvalidLiteral is returned when a decimal or hex literal fails to
// parse as an arbitrary-precision nonnegative integer.
var ErrInvalidLiteral = errors.New("bigint: invalid literal")

// ErrDoesNotFit is returned by PadBytes when the value cannot be represented
// in the requested number of bytes.
var ErrDoesNotFit = errors.New("bigint: value does not fit in requested width")

// FromDecimal parses a base-10 literal into a nonnegative *big.Int.
func FromDecimal(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLiteral, s)
	}
	return v, nil
}

// FromHex parses a hexadecimal literal (with or without a leading "0x") into
// a nonnegative *big.Int.
func FromHex(s string) (*big.Int, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, ok := new(big.Int).SetString(s, 16)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLiteral, s)
	}
	return v, nil
}

// MustDecimal parses s as FromDecimal does and panics on failure. Reserved
// for package-level constant initialization of well-known literals.
func MustDecimal(s string) *big.Int {
	v, err := FromDecimal(s)
	if err != nil {
		panic(err)
	}
	return v
}

// MinimalBytes returns the canonical minimal-form encoding of x: a single
// zero byte for x == 0, otherwise the big-endian bytes of x's hex
// representation, left-padded with a zero nibble when the hex string has
// odd length (so the encoding is always a whole number of bytes).
func MinimalBytes(x *big.Int) []byte {
	if x.Sign() == 0 {
		return []byte{0}
	}
	h := x.Text(16)
	if len(h)%2 != 0 {
		h = "0" + h
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		// x.Text(16) only ever emits [0-9a-f], so this cannot happen.
		panic(err)
	}
	return b
}

// ByteLen returns the minimal number of bytes needed to hold x, i.e.
// ceil(bitlen(x)/8). ByteLen(0) is 1, matching MinimalBytes.
func ByteLen(x *big.Int) int {
	if x.Sign() == 0 {
		return 1
	}
	return (x.BitLen() + 7) / 8
}

// PadBytes encodes x as big-endian bytes, zero-padded on the left to
// exactly n bytes. It fails if x does not fit in n bytes.
func PadBytes(x *big.Int, n int) ([]byte, error) {
	if x.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative value", ErrDoesNotFit)
	}
	raw := x.Bytes() // big-endian, no leading zero, empty for zero
	if len(raw) > n {
		return nil, fmt.Errorf("%w: needs %d bytes, have %d", ErrDoesNotFit, len(raw), n)
	}
	out := make([]byte, n)
	copy(out[n-len(raw):], raw)
	return out, nil
}

// PutUint64BE encodes v as 8 bytes, big-endian.
func PutUint64BE(v uint64) [8]byte {
	var b [8]byte
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}
