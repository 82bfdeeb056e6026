package moduli

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/wesolowski-vdf/vdf/primes"
)

func TestRSA2048BitLengthAndPrefix(t *testing.T) {
	n := RSA2048()
	if n.BitLen() != 2048 {
		t.Errorf("RSA2048 bit length = %d, want 2048", n.BitLen())
	}
	if !strings.HasPrefix(n.String(), "25195908475657") {
		t.Errorf("RSA2048 decimal prefix mismatch: %s", n.String()[:20])
	}
}

func TestRSA3072BitLengthAndDeterminism(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 3072-bit derivation in short mode")
	}
	n1 := RSA3072()
	if n1.BitLen() != 3072 {
		t.Errorf("RSA3072 bit length = %d, want 3072", n1.BitLen())
	}
	n2 := RSA3072()
	if n1.Cmp(n2) != 0 {
		t.Error("RSA3072 must be deterministic across calls")
	}
}

func TestRSA4096BitLengthAndDeterminism(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 4096-bit derivation in short mode")
	}
	n1 := RSA4096()
	if n1.BitLen() != 4096 {
		t.Errorf("RSA4096 bit length = %d, want 4096", n1.BitLen())
	}
	n2 := RSA4096()
	if n1.Cmp(n2) != 0 {
		t.Error("RSA4096 must be deterministic across calls")
	}
}

func TestSeedStreamIsDeterministicAndLong(t *testing.T) {
	s1 := newSeedStream("same-seed")
	s2 := newSeedStream("same-seed")

	buf1 := make([]byte, 200) // longer than a single SHA-512 block
	buf2 := make([]byte, 200)
	if _, err := s1.Read(buf1); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if _, err := s2.Read(buf2); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	for i := range buf1 {
		if buf1[i] != buf2[i] {
			t.Fatalf("seed streams diverged at byte %d", i)
		}
	}
}

func TestDeriveStrongPrimeIsPrime(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping strong-prime derivation in short mode")
	}
	p := deriveStrongPrime("moduli-test-seed:p", 512)
	if p.BitLen() != 512 {
		t.Errorf("derived prime has %d bits, want 512", p.BitLen())
	}
	if !primes.IsPrime(p, 32, rand.Reader) {
		t.Error("deriveStrongPrime returned a composite value")
	}
}
