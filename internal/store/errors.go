package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for an unknown problem id and by write paths
// that reference an entity the curriculum does not know.
var ErrNotFound = errors.New("not found")

// ErrInvalidScore is returned when a write carries a score outside 0..10.
var ErrInvalidScore = errors.New("score must be between 0 and 10")

// UnavailableError indicates the backing store could not serve a call.
// Callers must fail the request rather than continue with partial data.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("data source unavailable (%s): %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Retryable reports that the whole request may be retried later.
func (e *UnavailableError) Retryable() bool { return true }

// IsUnavailable reports whether err is or wraps an UnavailableError.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
