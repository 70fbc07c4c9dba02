package api

import (
	"time"

	"github.com/kochabx/ecckit/core/crypto/der"
	"github.com/kochabx/ecckit/core/crypto/ecies"
	"github.com/kochabx/ecckit/core/crypto/secp256k1"
)

type ServerKeyResponse struct {
	PublicKey secp256k1.PublicKeyHex `json:"publicKey"`
	Curve     string                 `json:"curve"`
	Timestamp time.Time              `json:"timestamp"`
}

// EncryptRequest encrypts for PublicKey, or for the server key when it is omitted.
type EncryptRequest struct {
	Message   string                  `json:"message" validate:"required"`
	PublicKey *secp256k1.PublicKeyHex `json:"publicKey"`
}

type DecryptRequest = ecies.FlatEnvelope

type DecryptResponse struct {
	DecryptedData string    `json:"decryptedData"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
}

type SignRequest struct {
	Message string `json:"message" validate:"required"`
}

type SignResponse struct {
	Signature string                 `json:"signature"`
	PublicKey secp256k1.PublicKeyHex `json:"publicKey"`
	Details   SignatureDetails       `json:"details"`
}

type VerifyRequest struct {
	Message   string                 `json:"message" validate:"required"`
	Signature string                 `json:"signature" validate:"required"`
	PublicKey secp256k1.PublicKeyHex `json:"publicKey"`
}

// SignatureDetails exposes the decoded integers of a DER signature.
type SignatureDetails struct {
	der.RS
	LowS bool `json:"lowS"`
}

type VerifyResponse struct {
	IsValid bool              `json:"isValid"`
	Message string            `json:"message"`
	Details *SignatureDetails `json:"details,omitempty"`
}

type BatchVerifyRequest struct {
	Items []VerifyRequest `json:"items" validate:"required,min=1,max=256"`
}

type BatchVerifyItem struct {
	Index   int    `json:"index"`
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
}

type BatchVerifyResponse struct {
	Results []BatchVerifyItem `json:"results"`
	Valid   int               `json:"valid"`
	Total   int               `json:"total"`
}

type SecureEchoResponse struct {
	Message string `json:"message"`
	Length  int    `json:"length"`
}

type AlgorithmsResponse struct {
	Algorithms []Algorithm           `json:"algorithms"`
	Curves     []secp256k1.CurveInfo `json:"curves"`
	Versions   map[string]string     `json:"versions"`
}

type Algorithm struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

type TimeResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Timezone  string    `json:"timezone"`
	Offset    int       `json:"offset"`
}
