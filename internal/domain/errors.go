package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrRateLimited   = errors.New("rate limited")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrMissingSymbol = errors.New("record missing symbol")
)

// FetchError wraps a failure from the remote data client. Transient
// failures (network, timeout, 429, 5xx) may be retried; permanent ones
// (bad request, auth) are surfaced immediately.
type FetchError struct {
	Category  Category
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("fetch %s (%s): %v", e.Category, kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SendError wraps a failure from the message dispatcher, with the same
// transient/permanent split as FetchError.
type SendError struct {
	Transient bool
	Err       error
}

func (e *SendError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("send (%s): %v", kind, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a retryable fetch or send failure.
// Unclassified errors are treated as permanent.
func IsTransient(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Transient
	}
	var se *SendError
	if errors.As(err, &se) {
		return se.Transient
	}
	return false
}
