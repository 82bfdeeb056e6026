// Package modexp implements windowed modular exponentiation, with
// Montgomery-routed inner loops for large moduli and large exponents, and a
// simultaneous two-base exponentiation (Shamir's trick) used by proof
// verification. The window table and bit-scanning shape follows the
// left-to-right k-ary exponentiation algorithm described in spec.md §4.3;
// the Montgomery routing reuses the montgomery package's cached reducers the
// way the VDF engine routes its own squaring loop.
package modexp

import (
	"math/big"

	"github.com/wesolowski-vdf/vdf/montgomery"
)

// windowSize returns the sliding-window width for an exponent of the given
// bit length, per spec.md §4.3's table.
func windowSize(bitLen int) int {
	switch {
	case bitLen <= 32:
		return 1
	case bitLen <= 96:
		return 3
	case bitLen <= 384:
		return 4
	case bitLen <= 1024:
		return 5
	default:
		return 6
	}
}

// ModPow computes x^y mod p.
func ModPow(x, y, p *big.Int) *big.Int {
	if p.Cmp(big.NewInt(1)) == 0 {
		return big.NewInt(0)
	}
	if y.Sign() == 0 {
		return new(big.Int).Mod(big.NewInt(1), p)
	}
	if y.Cmp(big.NewInt(1)) == 0 {
		return new(big.Int).Mod(x, p)
	}
	if y.Cmp(big.NewInt(2)) == 0 {
		r := new(big.Int).Mul(x, x)
		return r.Mod(r, p)
	}

	xm := new(big.Int).Mod(x, p)

	if y.BitLen() <= 64 {
		return binarySquareMultiply(xm, y, p)
	}

	if montgomery.ShouldUseForExponent(p, y.BitLen()) {
		red, err := montgomery.GetReducer(p)
		if err == nil {
			return windowedExpMontgomery(xm, y, p, red)
		}
		// Fall through to plain arithmetic if the reducer cannot be built
		// (e.g. an even modulus slipped through; ModPow still must answer).
	}

	return windowedExpPlain(xm, y, p)
}

// binarySquareMultiply performs ordinary left-to-right binary
// square-and-multiply, used for short exponents where a window table isn't
// worth building.
func binarySquareMultiply(x, y, p *big.Int) *big.Int {
	result := big.NewInt(1)
	base := new(big.Int).Set(x)
	for i := y.BitLen() - 1; i >= 0; i-- {
		result.Mul(result, result)
		result.Mod(result, p)
		if y.Bit(i) == 1 {
			result.Mul(result, base)
			result.Mod(result, p)
		}
	}
	return result
}

// oddPowersTable returns x^1, x^3, x^5, ..., x^(2^w-1) mod p, indexed by
// (exponent-1)/2 so table[k] = x^(2k+1) mod p.
func oddPowersTable(x, p *big.Int, w int) []*big.Int {
	size := 1 << (w - 1)
	table := make([]*big.Int, size)
	table[0] = new(big.Int).Set(x) // x^1
	xSquared := new(big.Int).Mul(x, x)
	xSquared.Mod(xSquared, p)
	for i := 1; i < size; i++ {
		t := new(big.Int).Mul(table[i-1], xSquared)
		t.Mod(t, p)
		table[i] = t
	}
	return table
}

// windowedExpPlain runs the sliding-window algorithm with ordinary modular
// multiplication.
func windowedExpPlain(x, y, p *big.Int) *big.Int {
	w := windowSize(y.BitLen())
	table := oddPowersTable(x, p, w)

	result := big.NewInt(1)
	bits := y.BitLen()
	i := bits - 1
	for i >= 0 {
		if y.Bit(i) == 0 {
			result.Mul(result, result)
			result.Mod(result, p)
			i--
			continue
		}
		// Extract a window of up to w bits ending at position i, trimmed so
		// its low bit is 1.
		j := i - w + 1
		if j < 0 {
			j = 0
		}
		for y.Bit(j) == 0 {
			j++
		}
		windowLen := i - j + 1
		value := 0
		for k := i; k >= j; k-- {
			value <<= 1
			if y.Bit(k) == 1 {
				value |= 1
			}
		}
		for b := 0; b < windowLen; b++ {
			result.Mul(result, result)
			result.Mod(result, p)
		}
		result.Mul(result, table[(value-1)/2])
		result.Mod(result, p)
		i = j - 1
	}
	return result
}

// windowedExpMontgomery runs the same sliding-window algorithm with
// Montgomery multiply/square in place of plain modular arithmetic,
// converting the base and the accumulator into Montgomery form up front and
// converting the result back at the end.
func windowedExpMontgomery(x, y, p *big.Int, red *montgomery.Reducer) *big.Int {
	w := windowSize(y.BitLen())

	xMont := red.ToMontgomery(x)
	size := 1 << (w - 1)
	table := make([]*big.Int, size)
	table[0] = xMont
	xSquaredMont := red.Square(xMont)
	for i := 1; i < size; i++ {
		table[i] = red.Multiply(table[i-1], xSquaredMont)
	}

	result := red.ToMontgomery(big.NewInt(1))
	bits := y.BitLen()
	i := bits - 1
	for i >= 0 {
		if y.Bit(i) == 0 {
			result = red.Square(result)
			i--
			continue
		}
		j := i - w + 1
		if j < 0 {
			j = 0
		}
		for y.Bit(j) == 0 {
			j++
		}
		windowLen := i - j + 1
		value := 0
		for k := i; k >= j; k-- {
			value <<= 1
			if y.Bit(k) == 1 {
				value |= 1
			}
		}
		for b := 0; b < windowLen; b++ {
			result = red.Square(result)
		}
		result = red.Multiply(result, table[(value-1)/2])
		i = j - 1
	}
	return red.FromMontgomery(result)
}

// ModPowProduct computes a^e * b^f mod m via the interleaved Shamir trick:
// precompute ab = a*b mod m, then scan e and f's bits together from their
// highest set bit down, squaring the accumulator each step and multiplying
// by a, b, or ab depending on which of the two bits are set.
func ModPowProduct(a, e, b, f, m *big.Int) *big.Int {
	am := new(big.Int).Mod(a, m)
	bm := new(big.Int).Mod(b, m)
	ab := new(big.Int).Mul(am, bm)
	ab.Mod(ab, m)

	useMont := montgomery.ShouldUseForExponent(m, maxBitLen(e, f))
	var red *montgomery.Reducer
	if useMont {
		var err error
		red, err = montgomery.GetReducer(m)
		if err != nil {
			useMont = false
		}
	}

	bits := maxBitLen(e, f)
	if bits == 0 {
		return new(big.Int).Mod(big.NewInt(1), m)
	}

	if useMont {
		amM := red.ToMontgomery(am)
		bmM := red.ToMontgomery(bm)
		abM := red.ToMontgomery(ab)
		result := red.ToMontgomery(big.NewInt(1))
		for i := bits - 1; i >= 0; i-- {
			result = red.Square(result)
			eb, fb := e.Bit(i), f.Bit(i)
			switch {
			case eb == 1 && fb == 1:
				result = red.Multiply(result, abM)
			case eb == 1:
				result = red.Multiply(result, amM)
			case fb == 1:
				result = red.Multiply(result, bmM)
			}
		}
		return red.FromMontgomery(result)
	}

	result := big.NewInt(1)
	for i := bits - 1; i >= 0; i-- {
		result.Mul(result, result)
		result.Mod(result, m)
		eb, fb := e.Bit(i), f.Bit(i)
		switch {
		case eb == 1 && fb == 1:
			result.Mul(result, ab)
		case eb == 1:
			result.Mul(result, am)
		case fb == 1:
			result.Mul(result, bm)
		}
		result.Mod(result, m)
	}
	return result
}

func maxBitLen(e, f *big.Int) int {
	if e.BitLen() > f.BitLen() {
		return e.BitLen()
	}
	return f.BitLen()
}
