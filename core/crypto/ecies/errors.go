package ecies

import "github.com/kochabx/ecckit/errors"

// Errors returned by Decrypt. They compare with errors.Is.
var (
	// ErrSharedSecretInfinity indicates that ECDH produced the point at infinity.
	ErrSharedSecretInfinity = errors.Crypto("ecies: shared secret is the point at infinity")

	// ErrAuthenticationFailed indicates a wrong key or tampered envelope.
	ErrAuthenticationFailed = errors.Crypto("ecies: authentication failed or corrupted data")

	// ErrInvalidPlaintext indicates that the decrypted bytes are not UTF-8.
	ErrInvalidPlaintext = errors.Crypto("ecies: decrypted data is not valid UTF-8")
)
