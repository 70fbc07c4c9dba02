package secp256k1

import (
	"crypto/sha256"
	"math/big"
)

// Hash returns SHA-256 of the UTF-8 bytes of message as a 256-bit integer.
// The result is not reduced; callers reduce mod N where needed.
func Hash(message string) *big.Int {
	sum := sha256.Sum256([]byte(message))
	return new(big.Int).SetBytes(sum[:])
}

// HashBytes is Hash for raw input.
func HashBytes(message []byte) *big.Int {
	sum := sha256.Sum256(message)
	return new(big.Int).SetBytes(sum[:])
}
