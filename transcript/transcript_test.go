package transcript

import (
	"bytes"
	"encoding/binary"
	"math/big"
	"testing"
)

func fixedNonce() []byte {
	nonce := make([]byte, NonceSize)
	for i := range nonce {
		nonce[i] = byte(i)
	}
	return nonce
}

func TestEncodeLayout(t *testing.T) {
	n := big.NewInt(1000000007 * 3) // arbitrary small modulus
	x := big.NewInt(5)
	h := big.NewInt(9)
	tVal := uint64(42)
	nonce := fixedNonce()

	payload, err := Encode(x, h, tVal, n, nonce)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	nLen := (n.BitLen() + 7) / 8
	wantLen := len(Tag) + 3*nLen + 8 + NonceSize
	if len(payload) != wantLen {
		t.Fatalf("payload length = %d, want %d", len(payload), wantLen)
	}

	if !bytes.Equal(payload[:len(Tag)], []byte(Tag)) {
		t.Errorf("tag mismatch: got %q", payload[:len(Tag)])
	}

	offset := len(Tag)
	xField := payload[offset : offset+nLen]
	if new(big.Int).SetBytes(xField).Cmp(x) != 0 {
		t.Errorf("x field decodes to %s, want %s", new(big.Int).SetBytes(xField), x)
	}
	offset += nLen

	hField := payload[offset : offset+nLen]
	if new(big.Int).SetBytes(hField).Cmp(h) != 0 {
		t.Errorf("h field decodes to %s, want %s", new(big.Int).SetBytes(hField), h)
	}
	offset += nLen

	tField := payload[offset : offset+8]
	if binary.BigEndian.Uint64(tField) != tVal {
		t.Errorf("t field decodes to %d, want %d", binary.BigEndian.Uint64(tField), tVal)
	}
	offset += 8

	nField := payload[offset : offset+nLen]
	if new(big.Int).SetBytes(nField).Cmp(n) != 0 {
		t.Errorf("n field decodes to %s, want %s", new(big.Int).SetBytes(nField), n)
	}
	offset += nLen

	nonceField := payload[offset:]
	if !bytes.Equal(nonceField, nonce) {
		t.Errorf("nonce field mismatch")
	}
}

func TestEncodeRejectsBadNonceLength(t *testing.T) {
	n := big.NewInt(101)
	if _, err := Encode(big.NewInt(1), big.NewInt(2), 1, n, []byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short nonce")
	}
}

func TestEncodeRejectsOversizedValue(t *testing.T) {
	n := big.NewInt(101)
	tooLarge := big.NewInt(1 << 20)
	if _, err := Encode(tooLarge, big.NewInt(1), 1, n, fixedNonce()); err == nil {
		t.Fatal("expected error when x does not fit the modulus width")
	}
}

func TestEncodeChangesWithAnyField(t *testing.T) {
	n := big.NewInt(999999937)
	x := big.NewInt(7)
	h := big.NewInt(11)
	nonce := fixedNonce()

	base, err := Encode(x, h, 50, n, nonce)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	variants := [][]byte{
		mustEncode(t, big.NewInt(8), h, 50, n, nonce),
		mustEncode(t, x, big.NewInt(12), 50, n, nonce),
		mustEncode(t, x, h, 51, n, nonce),
		mustEncode(t, x, h, 50, big.NewInt(999999893), nonce),
	}
	for i, v := range variants {
		if bytes.Equal(base, v) {
			t.Errorf("variant %d should change the transcript but didn't", i)
		}
	}
}

func mustEncode(t *testing.T, x, h *big.Int, tVal uint64, n *big.Int, nonce []byte) []byte {
	t.Helper()
	payload, err := Encode(x, h, tVal, n, nonce)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return payload
}
