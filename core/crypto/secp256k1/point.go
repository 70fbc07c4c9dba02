package secp256k1

import (
	"math/big"
)

// Point is an affine curve point. A nil *Point is the point at infinity.
type Point struct {
	X *big.Int
	Y *big.Int
}

// Infinity returns the point at infinity.
func Infinity() *Point {
	return nil
}

// IsInfinity reports whether p is the point at infinity.
func (p *Point) IsInfinity() bool {
	return p == nil
}

// Equal reports whether p and q are the same point.
func (p *Point) Equal(q *Point) bool {
	if p == nil || q == nil {
		return p == q
	}
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

// Clone returns a deep copy of p.
func (p *Point) Clone() *Point {
	if p == nil {
		return nil
	}
	return &Point{X: new(big.Int).Set(p.X), Y: new(big.Int).Set(p.Y)}
}

func inField(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(P) < 0
}

// IsOnCurve reports whether p is a finite point with coordinates in [0, P)
// satisfying y² ≡ x³ + 7 (mod P). Infinity is not on the curve.
func IsOnCurve(p *Point) bool {
	if p == nil || !inField(p.X) || !inField(p.Y) {
		return false
	}

	lhs := new(big.Int).Mul(p.Y, p.Y)
	mod(lhs, P)

	rhs := new(big.Int).Mul(p.X, p.X)
	rhs.Mul(rhs, p.X)
	rhs.Add(rhs, B)
	mod(rhs, P)

	return lhs.Cmp(rhs) == 0
}

// Add returns p + q.
func Add(p, q *Point) (*Point, error) {
	switch {
	case p == nil:
		return q.Clone(), nil
	case q == nil:
		return p.Clone(), nil
	}

	if p.X.Cmp(q.X) == 0 {
		if p.Y.Cmp(q.Y) == 0 {
			return Double(p)
		}
		// q = −p
		return nil, nil
	}

	// s = (y2 − y1) / (x2 − x1)
	num := new(big.Int).Sub(q.Y, p.Y)
	den := new(big.Int).Sub(q.X, p.X)
	mod(den, P)
	denInv, err := inv(den, P)
	if err != nil {
		return nil, err
	}
	s := num.Mul(num, denInv)
	mod(s, P)

	return chord(s, p, q.X), nil
}

// Double returns 2p.
func Double(p *Point) (*Point, error) {
	if p == nil || p.Y.Sign() == 0 {
		return nil, nil
	}

	// s = 3x² / 2y  (a = 0)
	num := new(big.Int).Mul(p.X, p.X)
	num.Mul(num, three)
	den := new(big.Int).Mul(p.Y, two)
	mod(den, P)
	denInv, err := inv(den, P)
	if err != nil {
		return nil, err
	}
	s := num.Mul(num, denInv)
	mod(s, P)

	return chord(s, p, p.X), nil
}

// chord finishes an addition given slope s through p and a second point with
// x-coordinate x2: x3 = s² − x1 − x2, y3 = s(x1 − x3) − y1.
func chord(s *big.Int, p *Point, x2 *big.Int) *Point {
	x3 := new(big.Int).Mul(s, s)
	x3.Sub(x3, p.X)
	x3.Sub(x3, x2)
	mod(x3, P)

	y3 := new(big.Int).Sub(p.X, x3)
	y3.Mul(y3, s)
	y3.Sub(y3, p.Y)
	mod(y3, P)

	return &Point{X: x3, Y: y3}
}

// Negate returns −p.
func Negate(p *Point) *Point {
	if p == nil {
		return nil
	}
	y := new(big.Int).Neg(p.Y)
	return &Point{X: new(big.Int).Set(p.X), Y: mod(y, P)}
}
