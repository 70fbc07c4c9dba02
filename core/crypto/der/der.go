// Package der encodes ECDSA signatures as ASN.1 DER
// SEQUENCE { INTEGER r, INTEGER s }, the form produced by Java's
// SHA256withECDSA and by OpenSSL.
package der

import (
	"encoding/hex"
	"math/big"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"github.com/kochabx/ecckit/errors"
)

// Signature is a decoded (r, s) pair.
type Signature struct {
	R *big.Int
	S *big.Int
}

// Encode returns the DER encoding of (r, s). Integers are written minimally
// with a 0x00 pad when the high bit is set.
func Encode(r, s *big.Int) ([]byte, error) {
	if r == nil || s == nil {
		return nil, errors.Validation("signature components r and s are required")
	}
	if r.Sign() < 0 || s.Sign() < 0 {
		return nil, errors.Validation("signature components must not be negative")
	}

	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})
	out, err := b.Bytes()
	if err != nil {
		return nil, errors.WrapCrypto(err, "failed to encode signature")
	}
	return out, nil
}

// EncodeHex is Encode with lowercase hex output.
func EncodeHex(r, s *big.Int) (string, error) {
	out, err := Encode(r, s)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(out), nil
}

// Encode returns the DER encoding of sig.
func (sig Signature) Encode() ([]byte, error) {
	return Encode(sig.R, sig.S)
}

// Decode parses a DER signature. Lengths must be minimal, each INTEGER must
// be a non-empty minimal non-negative encoding, and nothing may follow the
// sequence.
func Decode(b []byte) (*Signature, error) {
	if len(b) == 0 {
		return nil, errors.Validation("signature is empty")
	}
	if b[0] != byte(asn1.SEQUENCE) {
		return nil, errors.Validation("signature must start with a SEQUENCE tag")
	}

	input := cryptobyte.String(b)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, asn1.SEQUENCE) {
		return nil, errors.Validation("signature has a truncated or invalid length")
	}
	if !input.Empty() {
		return nil, errors.Validation("signature has trailing bytes")
	}

	r, err := readInteger(&seq, "r")
	if err != nil {
		return nil, err
	}
	s, err := readInteger(&seq, "s")
	if err != nil {
		return nil, err
	}
	if !seq.Empty() {
		return nil, errors.Validation("signature sequence has trailing bytes")
	}

	return &Signature{R: r, S: s}, nil
}

// DecodeHex decodes a hex DER signature. Surrounding whitespace is ignored.
func DecodeHex(s string) (*Signature, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.Validation("signature is empty")
	}
	if !strings.HasPrefix(s, "30") {
		return nil, errors.Validation("signature must start with 30")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.WrapValidation(err, "signature is not valid hex")
	}
	return Decode(b)
}

// readInteger reads one INTEGER as an unsigned value. Negative values and
// leading 0x00 bytes not needed to clear the sign bit are rejected.
func readInteger(seq *cryptobyte.String, name string) (*big.Int, error) {
	if !seq.PeekASN1Tag(asn1.INTEGER) {
		return nil, errors.Validation("signature is missing INTEGER %s", name)
	}
	var content cryptobyte.String
	if !seq.ReadASN1(&content, asn1.INTEGER) {
		return nil, errors.Validation("signature INTEGER %s has a truncated or invalid length", name)
	}
	if len(content) == 0 {
		return nil, errors.Validation("signature INTEGER %s is empty", name)
	}
	if content[0]&0x80 != 0 {
		return nil, errors.Validation("signature INTEGER %s is negative", name)
	}
	if content[0] == 0x00 && len(content) > 1 && content[1]&0x80 == 0 {
		return nil, errors.Validation("signature INTEGER %s is not minimally encoded", name)
	}
	return new(big.Int).SetBytes(content), nil
}
