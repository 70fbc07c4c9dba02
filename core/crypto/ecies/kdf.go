package ecies

import (
	"crypto/sha256"
	"math/big"
)

// deriveKey hashes the shared x-coordinate as its minimal big-endian bytes.
// The client does the same, so leading zero bytes are not restored.
func deriveKey(sharedX *big.Int) []byte {
	xb := sharedX.Bytes()
	defer clear(xb)

	sum := sha256.Sum256(xb)
	return sum[:]
}
