package irrecoverable

import (
	"errors"
	"fmt"
)

var exceptionSentinel = errors.New("exception")

// exception marks an error as an unexpected failure that the caller should not
// try to handle. It wraps the sentinel so that callers can detect it with
// IsException, while errors.Is/As keep seeing the original cause.
type exception struct {
	err error
}

func (e exception) Error() string {
	return e.err.Error()
}

func (e exception) Unwrap() []error {
	return []error{exceptionSentinel, e.err}
}

// NewException wraps err as an exception.
func NewException(err error) error {
	return exception{err: err}
}

// NewExceptionf creates a formatted exception.
func NewExceptionf(msg string, args ...interface{}) error {
	return NewException(fmt.Errorf(msg, args...))
}

// IsException returns true if err was created with NewException or NewExceptionf.
func IsException(err error) bool {
	return errors.Is(err, exceptionSentinel)
}
