package errors

import (
	stderrors "errors"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// FromError converts any error to Errno.
// The outermost Errno in the chain is returned as is; anything else is
// wrapped as ErrInternal.
func FromError(err error) *Errno {
	if err == nil {
		return nil
	}
	var e *Errno
	if stderrors.As(err, &e) {
		return e
	}
	return ErrInternal.WithCause(err)
}

// IsCode checks if the error chain contains an Errno with the given code.
func IsCode(err error, code int) bool {
	for _, e := range chain(err) {
		if e.Code == code {
			return true
		}
	}
	return false
}

// GetCode returns the code of the outermost Errno, or -1.
func GetCode(err error) int {
	var e *Errno
	if stderrors.As(err, &e) {
		return e.Code
	}
	return -1
}

// chain returns every Errno found while unwrapping err, outermost first.
func chain(err error) []*Errno {
	var out []*Errno
	for err != nil {
		if e, ok := err.(*Errno); ok {
			out = append(out, e)
		}
		err = stderrors.Unwrap(err)
	}
	return out
}
