package secp256k1

import (
	"math/big"

	"github.com/kochabx/ecckit/errors"
)

// Reduce returns a mod m in [0, m), also for negative a.
func Reduce(a, m *big.Int) (*big.Int, error) {
	if a == nil || m == nil {
		return nil, errors.Validation("operand and modulus are required")
	}
	if m.Sign() <= 0 {
		return nil, errors.Validation("modulus must be positive")
	}
	// Mod is Euclidean: the result is always non-negative for m > 0.
	return new(big.Int).Mod(a, m), nil
}

// Inverse returns x in [1, m) with a·x ≡ 1 (mod m), computed with the
// extended Euclidean algorithm.
func Inverse(a, m *big.Int) (*big.Int, error) {
	if a == nil || m == nil {
		return nil, errors.Validation("operand and modulus are required")
	}
	if m.Cmp(one) <= 0 {
		return nil, errors.Validation("modulus must be greater than 1")
	}

	r := new(big.Int).Mod(a, m)
	if r.Sign() == 0 {
		return nil, errors.Validation("operand has no inverse modulo m")
	}

	// Invariant: oldS·a ≡ oldR, s·a ≡ r (mod m).
	oldR, newR := new(big.Int).Set(r), new(big.Int).Set(m)
	oldS, newS := big.NewInt(1), big.NewInt(0)
	q, tmp := new(big.Int), new(big.Int)
	for newR.Sign() != 0 {
		q.Quo(oldR, newR)

		tmp.Mul(q, newR)
		oldR, newR = newR, tmp.Sub(oldR, tmp)
		tmp = new(big.Int)

		tmp.Mul(q, newS)
		oldS, newS = newS, tmp.Sub(oldS, tmp)
		tmp = new(big.Int)
	}

	if oldR.Cmp(one) != 0 {
		return nil, errors.Validation("operand has no inverse modulo m")
	}
	return oldS.Mod(oldS, m), nil
}

// mod reduces a into [0, m) in place and returns it. Internal fast path for
// operands that are already known to be well formed.
func mod(a, m *big.Int) *big.Int {
	return a.Mod(a, m)
}

// inv is Inverse for internal callers that treat a missing inverse as a
// failed computation rather than bad input.
func inv(a, m *big.Int) (*big.Int, error) {
	x, err := Inverse(a, m)
	if err != nil {
		return nil, errors.WrapCrypto(err, "modular inverse does not exist")
	}
	return x, nil
}
