package ecies

import (
	"github.com/kochabx/ecckit/core/crypto/secp256k1"
	"github.com/kochabx/ecckit/core/validator"
)

// Envelope is the output of Encrypt.
type Envelope struct {
	TempPublicKey secp256k1.PublicKeyHex `json:"tempPublicKey"`
	IV            string                 `json:"iv" validate:"required,ivhex"`
	Ciphertext    string                 `json:"ciphertext" validate:"required,hexadecimal"`
}

// FlatEnvelope is the envelope layout accepted by the eccd decrypt endpoint.
type FlatEnvelope struct {
	EphemeralPublicKeyX string `json:"ephemeralPublicKeyX"`
	EphemeralPublicKeyY string `json:"ephemeralPublicKeyY"`
	IV                  string `json:"iv"`
	Ciphertext          string `json:"ciphertext"`
}

// Flatten returns e in the flat layout.
func (e *Envelope) Flatten() FlatEnvelope {
	return FlatEnvelope{
		EphemeralPublicKeyX: e.TempPublicKey.X,
		EphemeralPublicKeyY: e.TempPublicKey.Y,
		IV:                  e.IV,
		Ciphertext:          e.Ciphertext,
	}
}

// Envelope returns f in the nested layout.
func (f FlatEnvelope) Envelope() *Envelope {
	return &Envelope{
		TempPublicKey: secp256k1.PublicKeyHex{X: f.EphemeralPublicKeyX, Y: f.EphemeralPublicKeyY},
		IV:            f.IV,
		Ciphertext:    f.Ciphertext,
	}
}

// normalized returns a copy of e with all whitespace removed from its fields.
func (e *Envelope) normalized() *Envelope {
	return &Envelope{
		TempPublicKey: secp256k1.PublicKeyHex{
			X: secp256k1.StripSpace(e.TempPublicKey.X),
			Y: secp256k1.StripSpace(e.TempPublicKey.Y),
		},
		IV:         secp256k1.StripSpace(e.IV),
		Ciphertext: secp256k1.StripSpace(e.Ciphertext),
	}
}

// Validate checks the shape of every field.
func (e *Envelope) Validate() error {
	return validator.ToError(validator.Validate.Struct(e))
}
