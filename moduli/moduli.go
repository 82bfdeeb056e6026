// Package moduli exposes the three fixed RSA moduli the VDF engine is
// allowed to operate over: RSA2048, the well-known RSA Factoring Challenge
// modulus, and RSA3072/RSA4096, deterministically derived from fixed seeds.
// Per spec.md §6 and its Non-goals, the engine never generates a fresh
// modulus at runtime; these three are embedded (RSA2048 as a literal) or
// derived once, deterministically, from a fixed seed (RSA3072/RSA4096), the
// way eth2030's generateVDFModulus derives a modulus from rand.Prime, except
// seeded so every build produces the same constant.
package moduli

import (
	"crypto/sha512"
	"encoding/binary"
	"math/big"
	"sync"

	"github.com/wesolowski-vdf/vdf/bigint"
	"github.com/wesolowski-vdf/vdf/primes"
)

// rsa2048Decimal is the RSA Factoring Challenge 2048-bit modulus (RSA-2048),
// a well-known public constant.
const rsa2048Decimal = "25195908475657893494027183240048398571429282126204032027777137836043662020707595556264018525880784406918290641249515082189298559149176184502808489120072844992687392807287776735971418347270261896375014971824691165077613379859095700097330459748808428401797429100642458691817195118746121515172654632282216869987549182422433637259085141865462043576798423387184774447920739934236584823824281198163815010674810451660377306056201619676256133844143603833904414952634432190114657544454178424020924616515723350778707749817125772467962926386356373289912154831438167899885040445364023527381951378636564391212010397122822120720357"

const rsa3072Seed = "wesolowski-vdf-3072-v1"
const rsa4096Seed = "wesolowski-vdf-4096-v1"

var (
	once3072 sync.Once
	once4096 sync.Once

	rsa3072 *big.Int
	rsa4096 *big.Int
)

// RSA2048 returns the 2048-bit RSA Factoring Challenge modulus.
func RSA2048() *big.Int {
	return new(big.Int).Set(rsa2048Value)
}

var rsa2048Value = bigint.MustDecimal(rsa2048Decimal)

// RSA3072 returns the 3072-bit deterministic modulus derived from the seed
// "wesolowski-vdf-3072-v1": the product of two 1536-bit primes.
func RSA3072() *big.Int {
	once3072.Do(func() {
		rsa3072 = deriveModulus(rsa3072Seed, 1536)
	})
	return new(big.Int).Set(rsa3072)
}

// RSA4096 returns the 4096-bit deterministic modulus derived from the seed
// "wesolowski-vdf-4096-v1": the product of two 2048-bit primes.
func RSA4096() *big.Int {
	once4096.Do(func() {
		rsa4096 = deriveModulus(rsa4096Seed, 2048)
	})
	return new(big.Int).Set(rsa4096)
}

// deriveModulus deterministically derives a modulus of exactly 2*bits bits
// as the product of two bits-bit primes, each drawn from its own
// SHA-512-expansion stream of seed. Both primes have their top two bits
// forced (the standard RSA-keygen trick), which guarantees the product has
// exactly 2*bits bits rather than leaving that to chance.
func deriveModulus(seed string, bits int) *big.Int {
	p := deriveStrongPrime(seed+":p", bits)
	q := deriveStrongPrime(seed+":q", bits)
	n := new(big.Int).Mul(p, q)
	if n.BitLen() != 2*bits {
		// Extremely unlikely given the forced top two bits, but if it ever
		// happens this is a derivation bug, not a runtime condition a
		// caller can recover from.
		panic("moduli: derived modulus has unexpected bit length")
	}
	return n
}

// deriveStrongPrime draws a deterministic bits-bit prime from seed's
// SHA-512-expansion stream, with its top two bits forced so that products of
// two such primes land above 2^(2*bits-1).
func deriveStrongPrime(seed string, bits int) *big.Int {
	stream := newSeedStream(seed)

	nBytes := (bits + 7) / 8
	buf := make([]byte, nBytes)
	if _, err := stream.Read(buf); err != nil {
		panic(err) // seedStream.Read never errors
	}
	buf[0] |= 0xC0 // force the top two bits
	buf[len(buf)-1] |= 0x01

	candidate := new(big.Int).SetBytes(buf)
	return primes.NextPrime(candidate, 32, stream)
}

// seedStream is a deterministic io.Reader that expands a fixed seed into an
// arbitrarily long byte stream via counter-mode SHA-512, used only for the
// reproducible derivation of the fixed moduli above.
type seedStream struct {
	seed    []byte
	counter uint64
	buf     []byte
}

func newSeedStream(seed string) *seedStream {
	return &seedStream{seed: []byte(seed)}
}

func (s *seedStream) Read(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		if len(s.buf) == 0 {
			var ctr [8]byte
			binary.BigEndian.PutUint64(ctr[:], s.counter)
			s.counter++
			h := sha512.Sum512(append(append([]byte{}, s.seed...), ctr[:]...))
			s.buf = h[:]
		}
		n := copy(p, s.buf)
		p = p[n:]
		s.buf = s.buf[n:]
	}
	return total, nil
}
