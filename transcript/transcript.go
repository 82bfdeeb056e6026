// Package transcript builds the canonical, bit-exact byte payload that the
// Fiat-Shamir challenge is derived from. Any deviation in this encoding
// changes the derived prime and therefore the proof, so the layout here is
// consensus-critical and must match spec.md §6 exactly.
package transcript

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/wesolowski-vdf/vdf/bigint"
)

// Tag is the domain-separation tag prefixed to every transcript.
const Tag = "wesolowski-v1"

// NonceSize is the required length of the nonce component.
const NonceSize = 32

// ErrInvalidNonceLength is returned when the nonce isn't exactly NonceSize
// bytes.
var ErrInvalidNonceLength = errors.New("transcript: nonce must be exactly 32 bytes")

// Encode builds TAG || X || H || T || N || NONCE, where X, H, N are
// big-endian and zero-padded to the minimal byte length of n, and T is an
// 8-byte big-endian unsigned 64-bit integer.
func Encode(x, h *big.Int, t uint64, n *big.Int, nonce []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidNonceLength, len(nonce))
	}

	nLen := bigint.ByteLen(n)

	xBytes, err := bigint.PadBytes(x, nLen)
	if err != nil {
		return nil, fmt.Errorf("transcript: x does not fit modulus width: %w", err)
	}
	hBytes, err := bigint.PadBytes(h, nLen)
	if err != nil {
		return nil, fmt.Errorf("transcript: h does not fit modulus width: %w", err)
	}
	nBytes, err := bigint.PadBytes(n, nLen)
	if err != nil {
		return nil, fmt.Errorf("transcript: n does not fit modulus width: %w", err)
	}
	tBytes := bigint.PutUint64BE(t)

	payload := make([]byte, 0, len(Tag)+3*nLen+8+NonceSize)
	payload = append(payload, Tag...)
	payload = append(payload, xBytes...)
	payload = append(payload, hBytes...)
	payload = append(payload, tBytes[:]...)
	payload = append(payload, nBytes...)
	payload = append(payload, nonce...)
	return payload, nil
}
