package ecies

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	dcrsecp "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/ecckit/core/crypto/secp256k1"
	"github.com/kochabx/ecckit/errors"
)

func newKeyPair(t testing.TB) *secp256k1.KeyPair {
	t.Helper()
	kp, err := secp256k1.GenerateKeyPair()
	require.NoError(t, err)
	return kp
}

// sealByHand builds an envelope with the decred library and the standard
// library only, the way an independent client would.
func sealByHand(t *testing.T, recipient secp256k1.PublicKeyHex, ephemeral []byte, iv []byte, plaintext []byte) *Envelope {
	t.Helper()

	pubBytes, err := hex.DecodeString("04" + recipient.X + recipient.Y)
	require.NoError(t, err)
	pub, err := dcrsecp.ParsePubKey(pubBytes)
	require.NoError(t, err)

	priv := dcrsecp.PrivKeyFromBytes(ephemeral)
	shared := dcrsecp.GenerateSharedSecret(priv, pub)
	key := sha256.Sum256(new(big.Int).SetBytes(shared).Bytes())

	block, err := aes.NewCipher(key[:])
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)

	temp := priv.PubKey()
	return &Envelope{
		TempPublicKey: secp256k1.PublicKeyHex{
			X: secp256k1.HexScalar(temp.X()),
			Y: secp256k1.HexScalar(temp.Y()),
		},
		IV:         hex.EncodeToString(iv),
		Ciphertext: hex.EncodeToString(gcm.Seal(nil, iv, plaintext, nil)),
	}
}

func TestEncryptDecrypt(t *testing.T) {
	kp := newKeyPair(t)

	env, err := Encrypt("Hello, ECIES!", kp.PublicKey)
	require.NoError(t, err)
	assert.Len(t, env.IV, IVHexLen)
	assert.Len(t, env.Ciphertext, 2*(len("Hello, ECIES!")+TagSize))

	got, err := Decrypt(env, kp.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, "Hello, ECIES!", got)
}

func TestEncryptDecryptUnicodeAndLarge(t *testing.T) {
	kp := newKeyPair(t)

	for _, msg := range []string{"你好，世界 🌏", strings.Repeat("Hello, world! ", 100)} {
		env, err := Encrypt(msg, kp.PublicKey)
		require.NoError(t, err)
		got, err := Decrypt(env, kp.PrivateKey)
		require.NoError(t, err)
		assert.Equal(t, msg, got)
	}
}

func TestEncryptIsRandomized(t *testing.T) {
	kp := newKeyPair(t)

	a, err := Encrypt("same", kp.PublicKey)
	require.NoError(t, err)
	b, err := Encrypt("same", kp.PublicKey)
	require.NoError(t, err)

	assert.NotEqual(t, a.TempPublicKey, b.TempPublicKey)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestDecryptHandBuiltEnvelope(t *testing.T) {
	kp := newKeyPair(t)
	ephemeral := secp256k1.Pad32(big.NewInt(0x1234567).Bytes())
	iv := []byte("0123456789ab")

	env := sealByHand(t, kp.PublicKey, ephemeral, iv, []byte("interop"))
	got, err := Decrypt(env, kp.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, "interop", got)
}

// shortSharedX searches ephemeral scalars 1, 2, ... for one whose shared
// x-coordinate with recipient has a zero top byte.
func shortSharedX(t *testing.T, recipient secp256k1.PublicKeyHex) (ephemeral []byte, sharedX *big.Int) {
	t.Helper()

	pubBytes, err := hex.DecodeString("04" + recipient.X + recipient.Y)
	require.NoError(t, err)
	pub, err := dcrsecp.ParsePubKey(pubBytes)
	require.NoError(t, err)

	limit := new(big.Int).Lsh(big.NewInt(1), 248)
	for k := int64(1); k < 1<<16; k++ {
		eph := secp256k1.Pad32(big.NewInt(k).Bytes())
		x := new(big.Int).SetBytes(dcrsecp.GenerateSharedSecret(dcrsecp.PrivKeyFromBytes(eph), pub))
		if x.Cmp(limit) < 0 {
			return eph, x
		}
	}
	t.Fatal("no ephemeral scalar with a short shared x found")
	return nil, nil
}

func TestDecryptShortSharedX(t *testing.T) {
	recipient, err := secp256k1.ParsePrivateKey(secp256k1.HexScalar(big.NewInt(0xc0ffee)))
	require.NoError(t, err)
	defer recipient.Destroy()
	pub := recipient.PublicKeyHex()

	ephemeral, x := shortSharedX(t, pub)
	require.Less(t, len(x.Bytes()), 32)

	// The key hashes the minimal bytes of x, not the 32-byte padded form.
	minimal := sha256.Sum256(x.Bytes())
	padded := sha256.Sum256(secp256k1.Pad32(x.Bytes()))
	require.NotEqual(t, minimal, padded)
	assert.Equal(t, minimal[:], deriveKey(x))

	iv := []byte("short-x-iv12")
	env := sealByHand(t, pub, ephemeral, iv, []byte("leading zero"))
	got, err := Decrypt(env, recipient.Hex())
	require.NoError(t, err)
	assert.Equal(t, "leading zero", got)

	// An envelope sealed under the padded key must not open.
	block, err := aes.NewCipher(padded[:])
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)
	wrong := *env
	wrong.Ciphertext = hex.EncodeToString(gcm.Seal(nil, iv, []byte("leading zero"), nil))
	_, err = Decrypt(&wrong, recipient.Hex())
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestDecryptTampered(t *testing.T) {
	kp := newKeyPair(t)
	env, err := Encrypt("attack at dawn", kp.PublicKey)
	require.NoError(t, err)

	raw, _ := hex.DecodeString(env.Ciphertext)
	raw[0] ^= 0x01
	tampered := *env
	tampered.Ciphertext = hex.EncodeToString(raw)

	_, err = Decrypt(&tampered, kp.PrivateKey)
	require.Error(t, err)
	assert.True(t, errors.IsCrypto(err))
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	other := newKeyPair(t)
	_, err = Decrypt(env, other.PrivateKey)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	badIV := *env
	badIV.IV = strings.Repeat("0", IVHexLen)
	_, err = Decrypt(&badIV, kp.PrivateKey)
	assert.True(t, errors.IsCrypto(err))
}

func TestDecryptInvalidUTF8(t *testing.T) {
	kp := newKeyPair(t)
	env := sealByHand(t, kp.PublicKey, secp256k1.Pad32([]byte{7}), make([]byte, IVSize), []byte{0xff, 0xfe, 0xfd})

	_, err := Decrypt(env, kp.PrivateKey)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPlaintext)
}

func TestDecryptStripsWhitespace(t *testing.T) {
	kp := newKeyPair(t)
	env, err := Encrypt("spaced", kp.PublicKey)
	require.NoError(t, err)

	spaced := &Envelope{
		TempPublicKey: secp256k1.PublicKeyHex{
			X: " " + env.TempPublicKey.X[:10] + "\n" + env.TempPublicKey.X[10:],
			Y: env.TempPublicKey.Y + "\t",
		},
		IV:         env.IV[:12] + " " + env.IV[12:],
		Ciphertext: "\n" + env.Ciphertext + "\n",
	}

	got, err := Decrypt(spaced, " "+kp.PrivateKey+" ")
	require.NoError(t, err)
	assert.Equal(t, "spaced", got)
}

func TestDecryptValidation(t *testing.T) {
	kp := newKeyPair(t)
	env, err := Encrypt("shape", kp.PublicKey)
	require.NoError(t, err)

	offCurve := *env
	offCurve.TempPublicKey = secp256k1.PublicKeyHex{X: kp.PublicKey.X, Y: kp.PublicKey.X}

	shortIV := *env
	shortIV.IV = env.IV[:22]

	emptyCT := *env
	emptyCT.Ciphertext = ""

	nonHexCT := *env
	nonHexCT.Ciphertext = "xyz"

	badTemp := *env
	badTemp.TempPublicKey.X = "abc"

	tests := []struct {
		name string
		env  *Envelope
		key  string
	}{
		{"nil envelope", nil, kp.PrivateKey},
		{"off-curve temp key", &offCurve, kp.PrivateKey},
		{"short iv", &shortIV, kp.PrivateKey},
		{"empty ciphertext", &emptyCT, kp.PrivateKey},
		{"non-hex ciphertext", &nonHexCT, kp.PrivateKey},
		{"short temp key", &badTemp, kp.PrivateKey},
		{"bad private key", env, "1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(tt.env, tt.key)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err), "got %v", err)
		})
	}
}

func TestEncryptValidation(t *testing.T) {
	kp := newKeyPair(t)

	_, err := Encrypt("", kp.PublicKey)
	assert.True(t, errors.IsValidation(err))

	_, err = Encrypt("m", secp256k1.PublicKeyHex{X: kp.PublicKey.X})
	assert.True(t, errors.IsValidation(err))

	_, err = Encrypt("m", secp256k1.PublicKeyHex{X: kp.PublicKey.X, Y: kp.PublicKey.X})
	assert.True(t, errors.IsValidation(err))
}

func TestEncryptEntropyFailure(t *testing.T) {
	kp := newKeyPair(t)
	_, err := Encrypt("m", kp.PublicKey,
		secp256k1.WithRand(bytes.NewReader(nil)),
		secp256k1.WithMaxAttempts(1))
	require.Error(t, err)
	assert.True(t, errors.IsCrypto(err))
}

func TestDecryptWithKey(t *testing.T) {
	kp := newKeyPair(t)
	key, err := secp256k1.ParsePrivateKey(kp.PrivateKey)
	require.NoError(t, err)

	env, err := Encrypt("server side", kp.PublicKey)
	require.NoError(t, err)

	got, err := DecryptWithKey(env, key)
	require.NoError(t, err)
	assert.Equal(t, "server side", got)
	assert.NotNil(t, key.D, "key must stay usable")

	_, err = DecryptWithKey(env, nil)
	assert.True(t, errors.IsValidation(err))
}

func TestFlatEnvelope(t *testing.T) {
	kp := newKeyPair(t)
	env, err := Encrypt("flat", kp.PublicKey)
	require.NoError(t, err)

	flat := env.Flatten()
	assert.Equal(t, env.TempPublicKey.X, flat.EphemeralPublicKeyX)
	assert.Equal(t, env, flat.Envelope())

	got, err := Decrypt(flat.Envelope(), kp.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, "flat", got)
}
