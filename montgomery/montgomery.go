// Package montgomery implements Montgomery modular reduction over an odd
// modulus n, following the same REDC shape as the retrieved
// blck-snwmn/arithmetic-vault montgomery package, generalized from a
// caller-supplied R to the spec's own R = 2^rBits (the smallest power of two
// exceeding n) and from a single ad-hoc instance to a bounded, process-wide
// cache keyed by modulus, the way eth2030's VDFChain/VDFBeacon keep a
// bounded, mutex-guarded cache of derived values.
package montgomery

import (
	"errors"
	"math/big"
	"sync"
)

// ErrEvenModulus is returned by NewReducer when the modulus is even.
var ErrEvenModulus = errors.New("montgomery: modulus must be odd")

// Reducer holds the precomputed values for Montgomery arithmetic modulo a
// fixed odd n: R = 2^rBits is the smallest power of two strictly greater
// than n, rMask = R-1, and n' = (-n^-1) mod R satisfies n*n' = -1 (mod R).
type Reducer struct {
	n      *big.Int
	rBits  int
	r      *big.Int
	rMask  *big.Int
	nPrime *big.Int
}

// NewReducer builds a Reducer for the given odd modulus n > 1.
func NewReducer(n *big.Int) (*Reducer, error) {
	if n.Bit(0) == 0 {
		return nil, ErrEvenModulus
	}

	rBits := n.BitLen()
	r := new(big.Int).Lsh(big.NewInt(1), uint(rBits))
	if r.Cmp(n) <= 0 {
		rBits++
		r.Lsh(big.NewInt(1), uint(rBits))
	}
	rMask := new(big.Int).Sub(r, big.NewInt(1))

	// Hensel lift nInv = n^-1 mod R, doubling the correct bit-width each
	// round; rBits rounds is always enough since each round at least
	// doubles the number of correct bits.
	nInv := big.NewInt(1)
	two := big.NewInt(2)
	tmp := new(big.Int)
	for i := 0; i < rBits; i++ {
		tmp.Mul(n, nInv)
		tmp.Sub(two, tmp)
		tmp.Mod(tmp, r)
		nInv.Mul(nInv, tmp)
		nInv.Mod(nInv, r)
	}
	nPrime := new(big.Int).Sub(r, nInv)
	nPrime.Mod(nPrime, r)

	return &Reducer{
		n:      new(big.Int).Set(n),
		rBits:  rBits,
		r:      r,
		rMask:  rMask,
		nPrime: nPrime,
	}, nil
}

// N returns a copy of the modulus.
func (red *Reducer) N() *big.Int { return new(big.Int).Set(red.n) }

// RBits returns rBits such that R = 2^rBits.
func (red *Reducer) RBits() int { return red.rBits }

// R returns a copy of R = 2^rBits.
func (red *Reducer) R() *big.Int { return new(big.Int).Set(red.r) }

// ToMontgomery computes a*R mod n.
func (red *Reducer) ToMontgomery(a *big.Int) *big.Int {
	t := new(big.Int).Mul(a, red.r)
	return t.Mod(t, red.n)
}

// reduce implements REDC: given 0 <= x < n*R, returns x*R^-1 mod n.
func (red *Reducer) reduce(x *big.Int) *big.Int {
	// R is a power of two, so reduction mod R is a bitwise AND against
	// rMask = R-1 rather than a general big.Int division.
	m := new(big.Int).And(x, red.rMask)
	m.Mul(m, red.nPrime)
	m.And(m, red.rMask)

	t := new(big.Int).Mul(m, red.n)
	t.Add(t, x)
	t.Rsh(t, uint(red.rBits))

	if t.Cmp(red.n) >= 0 {
		t.Sub(t, red.n)
	}
	return t
}

// FromMontgomery converts a value out of Montgomery form.
func (red *Reducer) FromMontgomery(a *big.Int) *big.Int {
	return red.reduce(a)
}

// Multiply computes (a*b) mod n for a, b already in Montgomery form,
// returning the product in Montgomery form.
func (red *Reducer) Multiply(a, b *big.Int) *big.Int {
	p := new(big.Int).Mul(a, b)
	return red.reduce(p)
}

// Square computes a^2 in Montgomery form.
func (red *Reducer) Square(a *big.Int) *big.Int {
	return red.Multiply(a, a)
}

// RoutingPolicy holds the thresholds that decide when evaluate/prove/modpow
// should pay the Montgomery conversion cost instead of using plain
// big.Int arithmetic: the modulus must be odd and at least MinModulusBits
// bits, and the work measure (squaring iterations or exponent bit length)
// must cross its own threshold. These are exposed as a struct, rather than
// fixed constants, so a caller such as vdf.EngineConfig can override them
// for testing without touching package internals.
type RoutingPolicy struct {
	MinModulusBits       int
	IterationThreshold   uint64
	ExponentBitThreshold int
}

// DefaultRoutingPolicy returns the thresholds this package uses absent any
// override: 1024-bit moduli, 5000 squaring iterations, 128-bit exponents.
func DefaultRoutingPolicy() RoutingPolicy {
	return RoutingPolicy{
		MinModulusBits:       1024,
		IterationThreshold:   5000,
		ExponentBitThreshold: 128,
	}
}

var (
	policyMu     sync.Mutex
	activePolicy = DefaultRoutingPolicy()
)

// SetDefaultPolicy overrides the process-wide routing policy used by
// ShouldUseForIterations and ShouldUseForExponent.
func SetDefaultPolicy(p RoutingPolicy) {
	policyMu.Lock()
	activePolicy = p
	policyMu.Unlock()
}

// CurrentPolicy returns the routing policy currently in effect.
func CurrentPolicy() RoutingPolicy {
	policyMu.Lock()
	defer policyMu.Unlock()
	return activePolicy
}

// ShouldUseForIterations reports whether evaluate/prove should route through
// Montgomery arithmetic for t sequential squarings modulo n, under the
// current routing policy.
func ShouldUseForIterations(n *big.Int, t uint64) bool {
	return ShouldUseForIterationsWithPolicy(n, t, CurrentPolicy())
}

// ShouldUseForIterationsWithPolicy is ShouldUseForIterations against an
// explicit policy rather than the process-wide default.
func ShouldUseForIterationsWithPolicy(n *big.Int, t uint64, policy RoutingPolicy) bool {
	return n.Bit(0) == 1 && n.BitLen() >= policy.MinModulusBits && t >= policy.IterationThreshold
}

// ShouldUseForExponent reports whether modpow should route through
// Montgomery arithmetic for an exponent of the given bit length modulo n,
// under the current routing policy.
func ShouldUseForExponent(n *big.Int, exponentBitLen int) bool {
	return ShouldUseForExponentWithPolicy(n, exponentBitLen, CurrentPolicy())
}

// ShouldUseForExponentWithPolicy is ShouldUseForExponent against an explicit
// policy rather than the process-wide default.
func ShouldUseForExponentWithPolicy(n *big.Int, exponentBitLen int, policy RoutingPolicy) bool {
	return n.Bit(0) == 1 && n.BitLen() >= policy.MinModulusBits && exponentBitLen >= policy.ExponentBitThreshold
}

// DefaultCacheCapacity is the reducer cache's capacity absent any override.
const DefaultCacheCapacity = 10

// cacheCapacity bounds the process-wide reducer cache; entries are inserted
// but never evicted once the cache is full, matching the spec's "at most 10
// entries, insert-only" memoization model. It is a variable, not a constant,
// so vdf.EngineConfig can override it for testing.
var (
	cacheMu       sync.Mutex
	cache         = make(map[string]*Reducer)
	cacheCapacity = DefaultCacheCapacity
)

// SetCacheCapacity overrides the process-wide reducer cache's capacity.
// Lowering it below the current entry count does not evict existing
// entries; it only stops further insertions.
func SetCacheCapacity(n int) {
	cacheMu.Lock()
	cacheCapacity = n
	cacheMu.Unlock()
}

// CacheCapacity returns the cache's current capacity.
func CacheCapacity() int {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	return cacheCapacity
}

// GetReducer returns a Reducer for n, reusing a cached instance when one
// exists. Concurrent callers racing on the same uncached modulus may each
// construct a Reducer; only one survives in the cache, and either outcome is
// a correct Reducer for n, so this is safe without further synchronization.
func GetReducer(n *big.Int) (*Reducer, error) {
	key := n.String()

	cacheMu.Lock()
	if red, ok := cache[key]; ok {
		cacheMu.Unlock()
		return red, nil
	}
	cacheMu.Unlock()

	red, err := NewReducer(n)
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	if len(cache) < cacheCapacity {
		cache[key] = red
	}
	cacheMu.Unlock()

	return red, nil
}

// CacheSize returns the number of reducers currently cached. Exposed for
// tests that assert the cache's bounded behavior.
func CacheSize() int {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	return len(cache)
}
