package secp256k1

import (
	"crypto/subtle"
	"io"
	"math/big"
	"time"

	"github.com/kochabx/ecckit/errors"
)

// PrivateKey is an in-memory key. Call Destroy when it is no longer needed.
type PrivateKey struct {
	D      *big.Int
	Public *Point
}

// KeyPair is the serialized form of a generated key pair.
type KeyPair struct {
	PrivateKey string       `json:"privateKey"`
	PublicKey  PublicKeyHex `json:"publicKey"`
	Curve      string       `json:"curve"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// Hex returns D as 64 lowercase hex characters.
func (k *PrivateKey) Hex() string {
	return HexScalar(k.D)
}

// PublicKeyHex returns the wire form of the public key.
func (k *PrivateKey) PublicKeyHex() PublicKeyHex {
	return EncodePoint(k.Public)
}

// Equals compares two private keys in constant time.
func (k *PrivateKey) Equals(other *PrivateKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	if k.D == nil || other.D == nil {
		return k.D == other.D
	}
	return subtle.ConstantTimeCompare(Pad32(k.D.Bytes()), Pad32(other.D.Bytes())) == 1
}

// Destroy zeroes the scalar. Copies made by math/big during arithmetic are
// not reachable and cannot be cleared.
func (k *PrivateKey) Destroy() {
	if k == nil || k.D == nil {
		return
	}
	words := k.D.Bits()
	for i := range words {
		words[i] = 0
	}
	k.D.SetInt64(0)
	k.D = nil
	k.Public = nil
}

// ValidScalar reports whether d lies in (0, N).
func ValidScalar(d *big.Int) bool {
	return d != nil && d.Sign() > 0 && d.Cmp(N) < 0
}

// GeneratePrivateKey draws 32 random bytes until they form a scalar in
// (0, N). Read errors count as failed attempts.
func GeneratePrivateKey(opts ...Option) (*big.Int, error) {
	o := NewOptions(opts...)
	return generateScalar(o)
}

func generateScalar(o Options) (*big.Int, error) {
	buf := make([]byte, KeyBytes)
	defer clear(buf)

	for attempt := 1; attempt <= o.MaxAttempts; attempt++ {
		if _, err := io.ReadFull(o.Rand, buf); err != nil {
			o.Logger.Warn().Err(err).Int("attempt", attempt).Msg("entropy read failed")
			continue
		}
		d := new(big.Int).SetBytes(buf)
		if ValidScalar(d) {
			return d, nil
		}
		o.Logger.Warn().Int("attempt", attempt).Msg("random scalar out of range")
	}
	return nil, errors.Crypto("failed to generate a valid private key after %d attempts", o.MaxAttempts)
}

// GeneratePublicKey returns d·G for d in (0, N).
func GeneratePublicKey(d *big.Int) (*Point, error) {
	if !ValidScalar(d) {
		return nil, errors.Validation("private key must be in the range (0, n)")
	}
	q, err := scalarMult(d, G())
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, errors.Crypto("public key is the point at infinity")
	}
	return q, nil
}

// NewPrivateKey generates a fresh in-memory key.
func NewPrivateKey(opts ...Option) (*PrivateKey, error) {
	d, err := GeneratePrivateKey(opts...)
	if err != nil {
		return nil, err
	}
	q, err := GeneratePublicKey(d)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{D: d, Public: q}, nil
}

// GenerateKeyPair generates a key pair in its serialized form.
func GenerateKeyPair(opts ...Option) (*KeyPair, error) {
	k, err := NewPrivateKey(opts...)
	if err != nil {
		return nil, err
	}
	defer k.Destroy()

	return &KeyPair{
		PrivateKey: k.Hex(),
		PublicKey:  k.PublicKeyHex(),
		Curve:      CurveName,
		CreatedAt:  time.Now(),
	}, nil
}

// ParsePrivateKey parses a 64-character hex scalar in (0, N) and derives its
// public key.
func ParsePrivateKey(s string) (*PrivateKey, error) {
	d, err := ParseScalar("privateKeyHex", s)
	if err != nil {
		return nil, err
	}
	q, err := GeneratePublicKey(d)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{D: d, Public: q}, nil
}

// ValidateKeyPair reports whether pub is the public key of privateKeyHex.
// Any parse failure yields false.
func ValidateKeyPair(privateKeyHex string, pub PublicKeyHex) bool {
	k, err := ParsePrivateKey(privateKeyHex)
	if err != nil {
		return false
	}
	defer k.Destroy()

	q, err := pub.Point()
	if err != nil {
		return false
	}
	return k.Public.Equal(q)
}
