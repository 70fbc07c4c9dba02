package errors

import (
	goerrors "errors"
)

// Standard library helpers, re-exported so callers only need one errors import.
var (
	Unwrap = goerrors.Unwrap
	Is     = goerrors.Is
	As     = goerrors.As
	Join   = goerrors.Join
)

// Cause returns the innermost error of err's Unwrap chain.
func Cause(err error) error {
	for err != nil {
		next := goerrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return nil
}

// Code returns the code of the first *Error in err's chain, or UnknownCode.
// A nil error has code 0.
func Code(err error) int {
	if err == nil {
		return 0
	}
	var ge *Error
	if goerrors.As(err, &ge) {
		return ge.Code
	}
	return UnknownCode
}
