package secp256k1

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/kochabx/ecckit/core/validator"
	"github.com/kochabx/ecckit/errors"
)

// PublicKeyHex is the wire form of a point: two 64-character hex coordinates.
type PublicKeyHex struct {
	X string `json:"x" validate:"required,hex64"`
	Y string `json:"y" validate:"required,hex64"`
}

// Validate checks the shape of both coordinates.
func (k PublicKeyHex) Validate() error {
	return validator.ToError(validator.Validate.Struct(&k))
}

// Point parses k and checks that it is a finite point on the curve.
func (k PublicKeyHex) Point() (*Point, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	p := &Point{X: mustParseHex(k.X), Y: mustParseHex(k.Y)}
	if !IsOnCurve(p) {
		return nil, errors.Validation("public key is not a valid point on the curve")
	}
	return p, nil
}

// String renders k as "x:y", the form used in HTTP headers.
func (k PublicKeyHex) String() string {
	return k.X + ":" + k.Y
}

// ParsePublicKeyHeader parses the "x:y" form produced by String.
func ParsePublicKeyHeader(s string) (PublicKeyHex, error) {
	x, y, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return PublicKeyHex{}, errors.Validation("public key must have the form x:y")
	}
	k := PublicKeyHex{X: x, Y: y}
	if err := k.Validate(); err != nil {
		return PublicKeyHex{}, err
	}
	return k, nil
}

// EncodePoint returns the wire form of p. p must be finite.
func EncodePoint(p *Point) PublicKeyHex {
	return PublicKeyHex{X: HexScalar(p.X), Y: HexScalar(p.Y)}
}

// HexScalar encodes v as 64 lowercase hex characters, zero-padded.
func HexScalar(v *big.Int) string {
	return fmt.Sprintf("%064x", v)
}

// ParseScalar parses a 64-character hex value named name. The value is not
// range checked.
func ParseScalar(name, s string) (*big.Int, error) {
	if err := validator.ToError(validator.Validate.Var(name, s, "required,hex64")); err != nil {
		return nil, err
	}
	return mustParseHex(s), nil
}

// Pad32 left-pads b with zeros to 32 bytes.
func Pad32(b []byte) []byte {
	if len(b) >= KeyBytes {
		return b
	}
	out := make([]byte, KeyBytes)
	copy(out[KeyBytes-len(b):], b)
	return out
}

// DecodeHex decodes s after validating that it is non-empty hex.
func DecodeHex(name, s string) ([]byte, error) {
	if err := validator.ToError(validator.Validate.Var(name, s, "required,hexadecimal")); err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.WrapValidation(err, "%s must have an even number of hex characters", name)
	}
	return b, nil
}

// StripSpace removes all whitespace from s.
func StripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func mustParseHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("secp256k1: unvalidated hex input")
	}
	return v
}
