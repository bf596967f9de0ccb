package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrScopeNotFound signals that the record source has no records for a scope.
	ErrScopeNotFound = errors.New("scope not found")
	// ErrScopeRequired signals a missing scope key.
	ErrScopeRequired = errors.New("scope is required")
	// ErrNoScope signals a page/sort/search operation before any scope was loaded.
	ErrNoScope = errors.New("no scope selected")
	// ErrFetchFailed signals a failed remote fetch of a scope's records.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrInvalidSortKey signals an unparseable sort key.
	ErrInvalidSortKey = errors.New("invalid sort key")
	// ErrInvalidRecord signals a record with a non-scalar field value.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidParams signals search parameters that fail validation.
	ErrInvalidParams = errors.New("invalid search parameters")
	// ErrSessionNotFound signals an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions signals that the session registry is full.
	ErrTooManySessions = errors.New("too many sessions")
)

// FetchError wraps ErrFetchFailed with the scope that failed to load.
type FetchError struct {
	Scope string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: scope %q: %v", ErrFetchFailed.Error(), e.Scope, e.Err)
}

// Is reports ErrFetchFailed so callers can match the class of failure.
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError creates a fetch error for scope.
func NewFetchError(scope string, err error) error {
	return &FetchError{Scope: scope, Err: err}
}
