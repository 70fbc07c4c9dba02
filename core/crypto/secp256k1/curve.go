package secp256k1

import (
	"fmt"
	"math/big"
)

const (
	// CurveName is the name reported in key pairs and curve info.
	CurveName = "secp256k1"
	// KeyBytes is the length of a serialized scalar or coordinate.
	KeyBytes = 32
	// KeyHexLen is the length of a hex-encoded scalar or coordinate.
	KeyHexLen = 2 * KeyBytes
)

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)

	// P is the field prime 2²⁵⁶ − 2³² − 977.
	P = mustHex("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f")
	// N is the order of the base point.
	N = mustHex("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	// A and B are the curve coefficients of y² = x³ + ax + b.
	A = big.NewInt(0)
	B = big.NewInt(7)

	gx = mustHex("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	gy = mustHex("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8")

	// halfN is ⌊N/2⌋, the bound for low-s signatures.
	halfN = new(big.Int).Rsh(N, 1)
)

func init() {
	if err := SelfCheck(); err != nil {
		panic(err)
	}
}

func mustHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("secp256k1: bad constant " + s)
	}
	return v
}

// G returns a copy of the base point.
func G() *Point {
	return &Point{X: new(big.Int).Set(gx), Y: new(big.Int).Set(gy)}
}

// HalfOrder returns a copy of ⌊N/2⌋.
func HalfOrder() *big.Int {
	return new(big.Int).Set(halfN)
}

// SelfCheck verifies the domain parameters: G lies on the curve and N·G is
// the point at infinity.
func SelfCheck() error {
	g := G()
	if !IsOnCurve(g) {
		return fmt.Errorf("secp256k1: base point is not on the curve")
	}
	// The scalar path reduces k mod N, so N·G is computed as (N−1)·G + G.
	q, err := scalarMult(new(big.Int).Sub(N, one), g)
	if err != nil {
		return fmt.Errorf("secp256k1: self check: %w", err)
	}
	sum, err := Add(q, g)
	if err != nil {
		return fmt.Errorf("secp256k1: self check: %w", err)
	}
	if sum != nil {
		return fmt.Errorf("secp256k1: N·G is not the point at infinity")
	}
	return nil
}

// CurveInfo describes the curve for display and discovery endpoints.
type CurveInfo struct {
	Name     string       `json:"name"`
	Equation string       `json:"equation"`
	P        string       `json:"p"`
	N        string       `json:"n"`
	G        PublicKeyHex `json:"G"`
	KeySize  int          `json:"keySize"`
	Security string       `json:"security"`
}

// Info returns the curve description.
func Info() CurveInfo {
	return CurveInfo{
		Name:     CurveName,
		Equation: "y² = x³ + 7",
		P:        HexScalar(P),
		N:        HexScalar(N),
		G:        EncodePoint(G()),
		KeySize:  8 * KeyBytes,
		Security: "128-bit",
	}
}
