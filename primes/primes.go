// Package primes implements the prime subsystem: a trial-division table of
// primes up to 1000, a mod-210 wheel over residues coprime to 2*3*5*7, and a
// Miller-Rabin primality test that is deterministic below a known bound and
// falls back to random witnesses above it. isPrime/nextPrime/getPrime follow
// the shapes described in spec.md §4.4; none of the retrieved example repos
// hand-roll Miller-Rabin (they lean on math/big.Int.ProbablyPrime, e.g.
// eth2030's vdfHashToPrime and the shadowyapparatus VDF file), but the
// engine's transcript-binding invariants (spec.md §3, "Challenge binding")
// require the exact deterministic-witness-set/wheel-walk behavior the spec
// names, so this package implements it directly against math/big rather
// than delegating to ProbablyPrime.
package primes

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sort"
)

// ErrInvalidBitLength is returned by GetPrime for a non-positive bit length.
var ErrInvalidBitLength = errors.New("primes: bits must be positive")

var (
	smallPrimes   []int64
	wheelResidues []int
	wheelGaps     []int
)

const wheelModulus = 210

func init() {
	smallPrimes = sieve(1000)
	wheelResidues = coprimeResidues(wheelModulus)
	wheelGaps = make([]int, len(wheelResidues))
	for i := range wheelResidues {
		if i == len(wheelResidues)-1 {
			wheelGaps[i] = wheelModulus - wheelResidues[i] + wheelResidues[0]
		} else {
			wheelGaps[i] = wheelResidues[i+1] - wheelResidues[i]
		}
	}
}

func sieve(limit int) []int64 {
	composite := make([]bool, limit+1)
	var out []int64
	for i := 2; i <= limit; i++ {
		if composite[i] {
			continue
		}
		out = append(out, int64(i))
		for j := i * i; j <= limit; j += i {
			composite[j] = true
		}
	}
	return out
}

func gcdInt(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func coprimeResidues(modulus int) []int {
	var out []int
	for r := 1; r < modulus; r++ {
		if gcdInt(r, modulus) == 1 {
			out = append(out, r)
		}
	}
	return out
}

// alignToWheel returns the smallest q >= p such that q mod 210 is a wheel
// residue, along with the index of that residue in wheelResidues.
func alignToWheel(p *big.Int) (*big.Int, int) {
	mod := new(big.Int).Mod(p, big.NewInt(wheelModulus))
	m := int(mod.Int64())

	idx := sort.SearchInts(wheelResidues, m)
	if idx == len(wheelResidues) {
		// Wrap to the first residue in the next block of 210.
		delta := wheelModulus - m + wheelResidues[0]
		q := new(big.Int).Add(p, big.NewInt(int64(delta)))
		return q, 0
	}
	delta := wheelResidues[idx] - m
	q := new(big.Int).Add(p, big.NewInt(int64(delta)))
	return q, idx
}

var detBound = mustParseDecimal("318665857834031151167461")

var deterministicWitnesses = []int64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}

func mustParseDecimal(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("primes: invalid literal " + s)
	}
	return v
}

// millerRabinRound performs one Miller-Rabin round with witness a against
// n-1 = 2^s * d.
func millerRabinRound(n, d *big.Int, s int, a *big.Int) bool {
	one := big.NewInt(1)
	nMinus1 := new(big.Int).Sub(n, one)

	x := new(big.Int).Exp(a, d, n)
	if x.Cmp(one) == 0 || x.Cmp(nMinus1) == 0 {
		return true
	}
	for r := 1; r < s; r++ {
		x.Mul(x, x)
		x.Mod(x, n)
		if x.Cmp(nMinus1) == 0 {
			return true
		}
		if x.Cmp(one) == 0 {
			return false
		}
	}
	return false
}

// IsPrime reports whether n is prime, using rounds random Miller-Rabin
// witnesses (drawn from rnd) once n exceeds the deterministic-witness bound.
// rnd may be nil when n is guaranteed to stay within the deterministic
// regime (e.g. wheel-walk candidates below 10^20).
func IsPrime(n *big.Int, rounds int, rnd io.Reader) bool {
	two := big.NewInt(2)
	three := big.NewInt(3)

	if n.Cmp(two) < 0 {
		return false
	}
	if n.Cmp(two) == 0 || n.Cmp(three) == 0 {
		return true
	}
	if n.Bit(0) == 0 {
		return false
	}

	for _, sp := range smallPrimes {
		spBig := big.NewInt(sp)
		if n.Cmp(spBig) == 0 {
			return true
		}
		if new(big.Int).Mod(n, spBig).Sign() == 0 {
			return false
		}
	}

	one := big.NewInt(1)
	nMinus1 := new(big.Int).Sub(n, one)
	d := new(big.Int).Set(nMinus1)
	s := 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		s++
	}

	if n.Cmp(detBound) < 0 {
		for _, w := range deterministicWitnesses {
			a := big.NewInt(w)
			if a.Cmp(nMinus1) >= 0 {
				break
			}
			if !millerRabinRound(n, d, s, a) {
				return false
			}
		}
		return true
	}

	if rnd == nil {
		rnd = rand.Reader
	}
	span := new(big.Int).Sub(n, big.NewInt(3)) // witnesses uniform in [2, n-2] -> n-3 choices
	if span.Sign() <= 0 {
		span = big.NewInt(1)
	}
	for i := 0; i < rounds; i++ {
		w, err := rand.Int(rnd, span)
		if err != nil {
			return false
		}
		a := new(big.Int).Add(w, two)
		if !millerRabinRound(n, d, s, a) {
			return false
		}
	}
	return true
}

// GetPrimeOptions configures GetPrime.
type GetPrimeOptions struct {
	Bits   int
	Rounds int
}

// DefaultGetPrimeOptions mirrors spec.md's defaults (bits=256, rounds=32).
func DefaultGetPrimeOptions() GetPrimeOptions {
	return GetPrimeOptions{Bits: 256, Rounds: 32}
}

// GetPrime samples a random prime of exactly opts.Bits bits using rnd as the
// source of randomness.
func GetPrime(opts GetPrimeOptions, rnd io.Reader) (*big.Int, error) {
	if opts.Bits <= 0 {
		return nil, ErrInvalidBitLength
	}
	if opts.Rounds <= 0 {
		opts.Rounds = 32
	}
	if rnd == nil {
		rnd = rand.Reader
	}

	limit := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(opts.Bits)), big.NewInt(1))
	nBytes := (opts.Bits + 7) / 8

	for {
		buf := make([]byte, nBytes)
		if _, err := io.ReadFull(rnd, buf); err != nil {
			return nil, fmt.Errorf("primes: failed to read random bytes: %w", err)
		}
		// Clear the bits of the first byte above position Bits-1 and force
		// that top bit, so the candidate has exactly Bits bits.
		topBit := uint((opts.Bits - 1) % 8)
		buf[0] &= 0xFF >> (7 - topBit)
		buf[0] |= 1 << topBit
		buf[len(buf)-1] |= 0x01

		candidate := new(big.Int).SetBytes(buf)
		candidate, idx := alignToWheel(candidate)
		if candidate.Cmp(limit) > 0 {
			continue // restart: wheel alignment pushed us past the requested width
		}

		overflowed := false
		for {
			if IsPrime(candidate, opts.Rounds, rnd) {
				return candidate, nil
			}
			candidate.Add(candidate, big.NewInt(int64(wheelGaps[idx])))
			idx = (idx + 1) % len(wheelGaps)
			if candidate.Cmp(limit) > 0 {
				overflowed = true
				break
			}
		}
		if overflowed {
			continue
		}
	}
}

// NextPrime returns the smallest prime >= n (n itself, if n is already
// prime).
func NextPrime(n *big.Int, rounds int, rnd io.Reader) *big.Int {
	if rounds <= 0 {
		rounds = 32
	}
	if rnd == nil {
		rnd = rand.Reader
	}

	if n.Cmp(big.NewInt(8)) < 0 {
		switch {
		case n.Cmp(big.NewInt(2)) < 0:
			return big.NewInt(2)
		case n.Cmp(big.NewInt(2)) == 0:
			return big.NewInt(2)
		case n.Cmp(big.NewInt(3)) == 0:
			return big.NewInt(3)
		case n.Cmp(big.NewInt(5)) <= 0:
			return big.NewInt(5)
		default:
			return big.NewInt(7)
		}
	}

	candidate, idx := alignToWheel(n)
	// Defensive: the tiny-n cases are already handled above, so candidate
	// can never fall back into that range here, but the spec keeps this
	// shape explicit rather than relying on that being obviously true.
	if candidate.Cmp(big.NewInt(8)) < 0 {
		return NextPrime(candidate, rounds, rnd)
	}

	for {
		if IsPrime(candidate, rounds, rnd) {
			return new(big.Int).Set(candidate)
		}
		candidate.Add(candidate, big.NewInt(int64(wheelGaps[idx])))
		idx = (idx + 1) % len(wheelGaps)
	}
}
