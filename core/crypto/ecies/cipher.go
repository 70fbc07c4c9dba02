package ecies

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"io"
	"math/big"
	"unicode/utf8"

	"github.com/kochabx/ecckit/core/crypto/secp256k1"
	"github.com/kochabx/ecckit/errors"
)

// Encrypt encrypts message for recipient.
//
// The encryption process:
//  1. Validate the recipient key and check it lies on the curve
//  2. Generate an ephemeral key pair
//  3. Compute S = e·Q and derive key = SHA-256(S.x)
//  4. Seal the message with AES-256-GCM under a random 12-byte IV
//
// The ephemeral private key and the derived key are wiped before returning.
func Encrypt(message string, recipient secp256k1.PublicKeyHex, opts ...secp256k1.Option) (*Envelope, error) {
	if message == "" {
		return nil, errors.Validation("message must be a non-empty string")
	}
	q, err := recipient.Point()
	if err != nil {
		return nil, err
	}

	o := secp256k1.NewOptions(opts...)

	d, err := o.RandomScalar()
	if err != nil {
		return nil, err
	}
	ephemeral, err := secp256k1.GeneratePublicKey(d)
	if err != nil {
		return nil, err
	}
	temp := &secp256k1.PrivateKey{D: d, Public: ephemeral}
	defer temp.Destroy()

	key, err := sharedKey(temp.D, q)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(o.Rand, iv); err != nil {
		return nil, errors.WrapCrypto(err, "ecies: failed to generate iv")
	}

	sealed := gcm.Seal(nil, iv, []byte(message), nil)

	o.Logger.Debug().Int("plaintext_len", len(message)).Msg("message encrypted")

	return &Envelope{
		TempPublicKey: temp.PublicKeyHex(),
		IV:            hex.EncodeToString(iv),
		Ciphertext:    hex.EncodeToString(sealed),
	}, nil
}

// Decrypt opens env with the recipient's hex private key. Whitespace in the
// hex fields is ignored.
func Decrypt(env *Envelope, privateKeyHex string, opts ...secp256k1.Option) (string, error) {
	if env == nil {
		return "", errors.Validation("envelope is required")
	}
	env = env.normalized()
	if err := env.Validate(); err != nil {
		return "", err
	}

	key, err := secp256k1.ParsePrivateKey(secp256k1.StripSpace(privateKeyHex))
	if err != nil {
		return "", err
	}
	defer key.Destroy()

	return open(env, key, secp256k1.NewOptions(opts...))
}

// DecryptWithKey is Decrypt for callers that hold a parsed key, such as a
// server keeping its key in memory. key is not destroyed.
func DecryptWithKey(env *Envelope, key *secp256k1.PrivateKey, opts ...secp256k1.Option) (string, error) {
	if env == nil {
		return "", errors.Validation("envelope is required")
	}
	if key == nil || !secp256k1.ValidScalar(key.D) {
		return "", errors.Validation("private key is required")
	}
	env = env.normalized()
	if err := env.Validate(); err != nil {
		return "", err
	}
	return open(env, key, secp256k1.NewOptions(opts...))
}

// open expects a normalized, shape-checked envelope.
func open(env *Envelope, key *secp256k1.PrivateKey, o secp256k1.Options) (string, error) {
	t, err := env.TempPublicKey.Point()
	if err != nil {
		return "", err
	}

	// Both fields passed the hex validators; odd lengths still fail here.
	iv, err := hex.DecodeString(env.IV)
	if err != nil {
		return "", errors.WrapValidation(err, "iv is not valid hex")
	}
	sealed, err := hex.DecodeString(env.Ciphertext)
	if err != nil {
		return "", errors.WrapValidation(err, "ciphertext is not valid hex")
	}

	aesKey, err := sharedKey(key.D, t)
	if err != nil {
		return "", err
	}
	defer clear(aesKey)

	gcm, err := newGCM(aesKey)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		o.Logger.Warn().Msg("envelope authentication failed")
		return "", ErrAuthenticationFailed.WithCause(err)
	}
	if !utf8.Valid(plaintext) {
		clear(plaintext)
		return "", ErrInvalidPlaintext
	}

	return string(plaintext), nil
}

// sharedKey computes d·Q and derives the AES key from its x-coordinate.
func sharedKey(d *big.Int, q *secp256k1.Point) ([]byte, error) {
	s, err := secp256k1.ScalarMult(d, q)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSharedSecretInfinity
	}
	return deriveKey(s.X), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.WrapCrypto(err, "ecies: failed to create AES cipher")
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, errors.WrapCrypto(err, "ecies: failed to create GCM")
	}
	return gcm, nil
}
