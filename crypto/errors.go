package crypto

import (
	"errors"
	"fmt"
)

var errMismatchedLengths = errors.New("indices, oldScalars and newScalars must have equal length")

// Error wraps a failure reported by the underlying curve library. Every
// operation in this package that can fail returns one of these; callers
// are expected to bubble it up rather than retry (see the engine's
// error handling design).
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("crypto: %s: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
