// Package secp256k1 implements affine arithmetic on the secp256k1 curve
// (y² = x³ + 7 over F_p) together with key generation and the wire formats
// shared by the ecdsa and ecies packages.
//
// All arithmetic is done with math/big. ScalarMult runs a fixed number of
// iterations and doubles unconditionally so its control flow does not depend
// on the scalar's bit pattern, but math/big itself is not constant time. The
// package must not be relied on where timing side channels matter.
//
// The point at infinity is represented by a nil *Point.
package secp256k1
