// Package ecdsa signs and verifies messages on secp256k1 with SHA-256 and
// DER-encoded, low-s signatures.
package ecdsa

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/kochabx/ecckit/core/crypto/der"
	"github.com/kochabx/ecckit/core/crypto/secp256k1"
	"github.com/kochabx/ecckit/errors"
)

// Sign signs message with the hex private key and returns a lowercase hex DER
// signature. Degenerate nonces are retried up to MaxAttempts times.
func Sign(message, privateKeyHex string, opts ...secp256k1.Option) (string, error) {
	b, err := SignToBytes(message, privateKeyHex, opts...)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SignToBytes is Sign returning raw DER bytes.
func SignToBytes(message, privateKeyHex string, opts ...secp256k1.Option) ([]byte, error) {
	if message == "" {
		return nil, errors.Validation("message must be a non-empty string")
	}
	key, err := secp256k1.ParsePrivateKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	return signWithKey(message, key, opts)
}

// SignWithKey signs message with an already parsed key, so long-lived keys
// never pass through an immutable hex string. The key is not destroyed.
func SignWithKey(message string, key *secp256k1.PrivateKey, opts ...secp256k1.Option) (string, error) {
	if message == "" {
		return "", errors.Validation("message must be a non-empty string")
	}
	if key == nil || !secp256k1.ValidScalar(key.D) {
		return "", errors.Validation("private key is required")
	}
	b, err := signWithKey(message, key, opts)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func signWithKey(message string, key *secp256k1.PrivateKey, opts []secp256k1.Option) ([]byte, error) {
	o := secp256k1.NewOptions(opts...)
	sig, err := sign(secp256k1.Hash(message), key.D, o)
	if err != nil {
		return nil, err
	}
	return sig.Encode()
}

func sign(e, d *big.Int, o secp256k1.Options) (*der.Signature, error) {
	n := secp256k1.N
	for attempt := 1; attempt <= o.MaxAttempts; attempt++ {
		k, err := o.RandomScalar()
		if err != nil {
			return nil, err
		}

		R, err := secp256k1.ScalarBaseMult(k)
		if err != nil {
			return nil, err
		}
		if R == nil {
			o.Logger.Warn().Int("attempt", attempt).Msg("nonce point at infinity, retrying")
			continue
		}

		r := new(big.Int).Mod(R.X, n)
		if r.Sign() == 0 {
			o.Logger.Warn().Int("attempt", attempt).Msg("signature r is zero, retrying")
			continue
		}

		kInv, err := secp256k1.Inverse(k, n)
		if err != nil {
			return nil, errors.WrapCrypto(err, "nonce has no inverse")
		}
		// s = k⁻¹(e + r·d) mod n
		s := new(big.Int).Mul(r, d)
		s.Add(s, e)
		s.Mul(s, kInv)
		s.Mod(s, n)
		k.SetInt64(0)
		if s.Sign() == 0 {
			o.Logger.Warn().Int("attempt", attempt).Msg("signature s is zero, retrying")
			continue
		}

		return (&der.Signature{R: r, S: s}).Normalize(), nil
	}
	return nil, errors.Crypto("signing failed after %d attempts", o.MaxAttempts)
}

// Verify reports whether signatureHex is a valid signature of message by
// publicKey. Malformed input (empty message, non-hex signature, badly shaped
// key) is reported as a validation error; every other failure is false.
func Verify(message, signatureHex string, publicKey secp256k1.PublicKeyHex, opts ...secp256k1.Option) (bool, error) {
	if message == "" {
		return false, errors.Validation("message must be a non-empty string")
	}
	sigBytes, err := secp256k1.DecodeHex("signatureDER", strings.TrimSpace(signatureHex))
	if err != nil {
		return false, err
	}
	return VerifyFromBytes(message, sigBytes, publicKey, opts...)
}

// VerifyFromBytes is Verify over raw DER bytes.
func VerifyFromBytes(message string, signature []byte, publicKey secp256k1.PublicKeyHex, opts ...secp256k1.Option) (bool, error) {
	if message == "" {
		return false, errors.Validation("message must be a non-empty string")
	}
	if len(signature) == 0 {
		return false, errors.Validation("signatureDER must not be empty")
	}
	if err := publicKey.Validate(); err != nil {
		return false, err
	}

	o := secp256k1.NewOptions(opts...)
	sig, err := der.Decode(signature)
	if err != nil {
		o.Logger.Debug().Err(err).Msg("signature decode failed")
		return false, nil
	}
	q, err := publicKey.Point()
	if err != nil {
		o.Logger.Debug().Err(err).Msg("public key rejected")
		return false, nil
	}
	return verify(secp256k1.Hash(message), sig, q), nil
}

// VerifyRS verifies a signature given as fixed-width hex r and s.
func VerifyRS(message string, rs der.RS, publicKey secp256k1.PublicKeyHex, opts ...secp256k1.Option) (bool, error) {
	sigHex, err := der.FromRS(rs)
	if err != nil {
		return false, err
	}
	return Verify(message, sigHex, publicKey, opts...)
}

// verify checks R' = u1·G + u2·Q with u1 = e·s⁻¹, u2 = r·s⁻¹ and compares
// R'.x mod n with r. q must be on the curve.
func verify(e *big.Int, sig *der.Signature, q *secp256k1.Point) bool {
	if !sig.InRange() {
		return false
	}
	n := secp256k1.N

	w, err := secp256k1.Inverse(sig.S, n)
	if err != nil {
		return false
	}
	u1 := new(big.Int).Mul(e, w)
	u1.Mod(u1, n)
	u2 := new(big.Int).Mul(sig.R, w)
	u2.Mod(u2, n)

	p1, err := secp256k1.ScalarBaseMult(u1)
	if err != nil {
		return false
	}
	p2, err := secp256k1.ScalarMult(u2, q)
	if err != nil {
		return false
	}
	R, err := secp256k1.Add(p1, p2)
	if err != nil || R == nil {
		return false
	}

	v := new(big.Int).Mod(R.X, n)
	return v.Cmp(sig.R) == 0
}
