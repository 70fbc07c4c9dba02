// Package ecies implements the hybrid encryption scheme used between the
// browser client and eccd:
//   - secp256k1 ECDH between an ephemeral key and the recipient key
//   - key = SHA-256 of the shared x-coordinate in minimal big-endian form
//   - AES-256-GCM with a 12-byte random IV
//
// The result is an Envelope carrying the ephemeral public key, the IV and
// the ciphertext with its 16-byte tag appended, all hex encoded.
//
// Example usage:
//
//	kp, err := secp256k1.GenerateKeyPair()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	env, err := ecies.Encrypt("Hello, ECIES!", kp.PublicKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	plaintext, err := ecies.Decrypt(env, kp.PrivateKey)
package ecies
