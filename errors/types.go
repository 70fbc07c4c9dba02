package errors

const (
	// CodeValidation is the code carried by validation errors.
	CodeValidation = 400
	// CodeCrypto is the code carried by crypto errors.
	CodeCrypto = 500
)

// Validation creates an error for malformed or out-of-domain caller input.
// The message must name the offending parameter, never echo key material.
func Validation(format string, args ...any) *Error {
	return newKind(CodeValidation, KindValidation, format, args...)
}

// Crypto creates an error for a failed cryptographic computation.
func Crypto(format string, args ...any) *Error {
	return newKind(CodeCrypto, KindCrypto, format, args...)
}

// WrapValidation wraps err as a validation error. Returns nil if err is nil.
func WrapValidation(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Validation(format, args...).WithCause(err)
}

// WrapCrypto wraps err as a crypto error. Returns nil if err is nil.
func WrapCrypto(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Crypto(format, args...).WithCause(err)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsCrypto reports whether err is a crypto error.
func IsCrypto(err error) bool {
	return KindOf(err) == KindCrypto
}

func BadRequest(format string, args ...any) *Error {
	return New(400, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(404, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(500, format, args...)
}
