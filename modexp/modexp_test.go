package modexp

import (
	"math/big"
	"math/rand"
	"testing"
)

func naiveModPow(x, y, p *big.Int) *big.Int {
	return new(big.Int).Exp(x, y, p)
}

func TestModPowEdgeCases(t *testing.T) {
	x := big.NewInt(7)
	if got := ModPow(x, big.NewInt(5), big.NewInt(1)); got.Sign() != 0 {
		t.Errorf("ModPow(_, _, 1) = %s, want 0", got.String())
	}
	if got := ModPow(x, big.NewInt(0), big.NewInt(13)); got.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("ModPow(x, 0, p) = %s, want 1", got.String())
	}
	if got := ModPow(x, big.NewInt(1), big.NewInt(13)); got.Cmp(big.NewInt(7)) != 0 {
		t.Errorf("ModPow(x, 1, p) = %s, want 7", got.String())
	}
	if got := ModPow(x, big.NewInt(2), big.NewInt(13)); got.Cmp(big.NewInt(10)) != 0 {
		t.Errorf("ModPow(7, 2, 13) = %s, want 10", got.String())
	}
}

func TestModPowAgreesWithNaiveReference(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping exhaustive modpow sweep in short mode")
	}

	moduli := []*big.Int{
		big.NewInt(251),                              // 8 bits
		new(big.Int).SetUint64(18446744073709551557), // ~64 bits
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 1024), big.NewInt(105)), // ~1024 bits
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 2048), big.NewInt(1)),   // ~2048 bits
	}

	rnd := rand.New(rand.NewSource(42))
	for _, p := range moduli {
		for i := 0; i < 25; i++ {
			x := new(big.Int).Rand(rnd, p)
			expBits := 1 + rnd.Intn(20)
			y := new(big.Int).Rand(rnd, new(big.Int).Lsh(big.NewInt(1), uint(expBits)))

			got := ModPow(x, y, p)
			want := naiveModPow(x, y, p)
			if got.Cmp(want) != 0 {
				t.Fatalf("ModPow(%s, %s, %s) = %s, want %s", x, y, p, got, want)
			}
		}
	}
}

func TestModPowLargeExponentRoutesMontgomery(t *testing.T) {
	p := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 2048), big.NewInt(1))
	x := big.NewInt(2)
	y := new(big.Int).Lsh(big.NewInt(1), 200) // 201-bit exponent, well above the window threshold

	got := ModPow(x, y, p)
	want := naiveModPow(x, y, p)
	if got.Cmp(want) != 0 {
		t.Fatalf("ModPow mismatch for large exponent: got %s, want %s", got, want)
	}
}

func TestModPowProductAgreesWithTwoIndependentCalls(t *testing.T) {
	p := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 2048), big.NewInt(1))
	a := big.NewInt(123456789)
	b := big.NewInt(987654321)
	e := new(big.Int).Lsh(big.NewInt(1), 150)
	f := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 149), big.NewInt(17))

	got := ModPowProduct(a, e, b, f, p)

	ae := naiveModPow(a, e, p)
	bf := naiveModPow(b, f, p)
	want := new(big.Int).Mul(ae, bf)
	want.Mod(want, p)

	if got.Cmp(want) != 0 {
		t.Fatalf("ModPowProduct = %s, want %s", got, want)
	}
}

func TestModPowProductZeroExponents(t *testing.T) {
	p := big.NewInt(97)
	got := ModPowProduct(big.NewInt(5), big.NewInt(0), big.NewInt(7), big.NewInt(0), p)
	if got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("ModPowProduct with zero exponents = %s, want 1", got)
	}
}
