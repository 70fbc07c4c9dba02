package der

import (
	"math/big"
	"strings"

	"github.com/kochabx/ecckit/core/crypto/secp256k1"
	"github.com/kochabx/ecckit/errors"
)

// RS is the fixed-width hex form of a signature.
type RS struct {
	R string `json:"r" validate:"required,hex64"`
	S string `json:"s" validate:"required,hex64"`
}

// ToRS converts a hex DER signature to 64-character r and s.
func ToRS(derHex string) (RS, error) {
	derHex = strings.TrimSpace(derHex)
	if err := checkShape(derHex); err != nil {
		return RS{}, err
	}
	sig, err := DecodeHex(derHex)
	if err != nil {
		return RS{}, err
	}
	return sig.RS(), nil
}

// FromRS converts fixed-width r and s to a hex DER signature.
func FromRS(rs RS) (string, error) {
	r, err := secp256k1.ParseScalar("r", rs.R)
	if err != nil {
		return "", err
	}
	s, err := secp256k1.ParseScalar("s", rs.S)
	if err != nil {
		return "", err
	}
	return EncodeHex(r, s)
}

// RS returns the fixed-width hex form of sig.
func (sig *Signature) RS() RS {
	return RS{R: secp256k1.HexScalar(sig.R), S: secp256k1.HexScalar(sig.S)}
}

// InRange reports whether r and s both lie in (0, N).
func (sig *Signature) InRange() bool {
	return secp256k1.ValidScalar(sig.R) && secp256k1.ValidScalar(sig.S)
}

// IsLowS reports whether s ≤ N/2.
func (sig *Signature) IsLowS() bool {
	return sig.S.Cmp(secp256k1.HalfOrder()) <= 0
}

// Normalize returns a copy of sig with s replaced by N − s when s > N/2.
func (sig *Signature) Normalize() *Signature {
	s := new(big.Int).Set(sig.S)
	if !sig.IsLowS() {
		s.Sub(secp256k1.N, s)
	}
	return &Signature{R: new(big.Int).Set(sig.R), S: s}
}

// checkShape is the cheap pre-check applied to hex DER text: hex, at least
// eight bytes, SEQUENCE tag first.
func checkShape(derHex string) error {
	if _, err := secp256k1.DecodeHex("signatureDER", derHex); err != nil {
		return err
	}
	if len(derHex) < 16 {
		return errors.Validation("signatureDER is too short")
	}
	if !strings.HasPrefix(derHex, "30") {
		return errors.Validation("signatureDER must start with 30")
	}
	return nil
}
