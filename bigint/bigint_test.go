package bigint

import (
	"math/big"
	"testing"
)

func TestFromDecimal(t *testing.T) {
	v, err := FromDecimal("12345")
	if err != nil {
		t.Fatalf("FromDecimal failed: %v", err)
	}
	if v.Cmp(big.NewInt(12345)) != 0 {
		t.Errorf("expected 12345, got %s", v.String())
	}

	if _, err := FromDecimal("not-a-number"); err == nil {
		t.Fatal("expected error for invalid decimal literal")
	}
	if _, err := FromDecimal("-5"); err == nil {
		t.Fatal("expected error for negative decimal literal")
	}
}

func TestFromHex(t *testing.T) {
	v, err := FromHex("0x1a")
	if err != nil {
		t.Fatalf("FromHex failed: %v", err)
	}
	if v.Cmp(big.NewInt(26)) != 0 {
		t.Errorf("expected 26, got %s", v.String())
	}

	v2, err := FromHex("1a")
	if err != nil {
		t.Fatalf("FromHex without prefix failed: %v", err)
	}
	if v2.Cmp(v) != 0 {
		t.Errorf("prefixed and unprefixed hex should agree")
	}
}

func TestMinimalBytesZero(t *testing.T) {
	got := MinimalBytes(big.NewInt(0))
	want := []byte{0}
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("MinimalBytes(0) = %v, want %v", got, want)
	}
}

func TestMinimalBytesOddHexLength(t *testing.T) {
	// 0xABC has an odd number of hex digits and must be left-padded to 0x0ABC.
	x := big.NewInt(0xABC)
	got := MinimalBytes(x)
	want := []byte{0x0a, 0xbc}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("MinimalBytes(0xABC) = %x, want %x", got, want)
	}
}

func TestByteLen(t *testing.T) {
	cases := []struct {
		v    *big.Int
		want int
	}{
		{big.NewInt(0), 1},
		{big.NewInt(1), 1},
		{big.NewInt(255), 1},
		{big.NewInt(256), 2},
		{new(big.Int).Lsh(big.NewInt(1), 2047), 256},
	}
	for _, c := range cases {
		if got := ByteLen(c.v); got != c.want {
			t.Errorf("ByteLen(%s) = %d, want %d", c.v.String(), got, c.want)
		}
	}
}

func TestPadBytesRoundtrip(t *testing.T) {
	x := big.NewInt(1234)
	out, err := PadBytes(x, 8)
	if err != nil {
		t.Fatalf("PadBytes failed: %v", err)
	}
	if len(out) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(out))
	}
	back := new(big.Int).SetBytes(out)
	if back.Cmp(x) != 0 {
		t.Errorf("roundtrip mismatch: got %s, want %s", back.String(), x.String())
	}
}

func TestPadBytesTooSmall(t *testing.T) {
	x := new(big.Int).Lsh(big.NewInt(1), 100)
	if _, err := PadBytes(x, 1); err == nil {
		t.Fatal("expected error when value does not fit in requested width")
	}
}

func TestPutUint64BE(t *testing.T) {
	b := PutUint64BE(0x0102030405060708)
	want := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	if b != want {
		t.Errorf("PutUint64BE = %v, want %v", b, want)
	}
}
