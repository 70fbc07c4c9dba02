package secp256k1

import (
	"math/big"

	"github.com/kochabx/ecckit/errors"
)

// ScalarMult returns k·p using LSB-first double-and-add. k is reduced mod N.
// The loop always runs N.BitLen() iterations and doubles every time; only the
// addition is conditional on the bit.
func ScalarMult(k *big.Int, p *Point) (*Point, error) {
	if k == nil {
		return nil, errors.Validation("scalar is required")
	}
	if p != nil && !IsOnCurve(p) {
		return nil, errors.Validation("point is not on the curve")
	}
	return scalarMult(k, p)
}

// ScalarBaseMult returns k·G.
func ScalarBaseMult(k *big.Int) (*Point, error) {
	if k == nil {
		return nil, errors.Validation("scalar is required")
	}
	return scalarMult(k, G())
}

// scalarMult assumes p is on the curve or infinity.
func scalarMult(k *big.Int, p *Point) (*Point, error) {
	e := new(big.Int).Mod(k, N)
	if e.Sign() == 0 || p == nil {
		return nil, nil
	}
	if e.Cmp(one) == 0 {
		return p.Clone(), nil
	}

	var (
		acc    *Point
		addend = p.Clone()
		err    error
	)
	for i := 0; i < N.BitLen(); i++ {
		if e.Bit(i) == 1 {
			if acc, err = Add(acc, addend); err != nil {
				return nil, err
			}
		}
		if addend, err = Double(addend); err != nil {
			return nil, err
		}
	}
	return acc, nil
}
