package ecies

const (
	// AESKeySize is the size of the AES-256 key derived from the shared secret.
	AESKeySize = 32

	// IVSize is the size of the AES-GCM nonce.
	IVSize = 12

	// IVHexLen is the length of the hex-encoded IV.
	IVHexLen = 2 * IVSize

	// TagSize is the size of the GCM authentication tag appended to the
	// ciphertext.
	TagSize = 16
)
