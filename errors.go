package pollsearch

import (
	"errors"

	"github.com/kailas-cloud/pollsearch/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrScopeNotFound  = domain.ErrScopeNotFound
	ErrScopeRequired  = domain.ErrScopeRequired
	ErrNoScope        = domain.ErrNoScope
	ErrFetchFailed    = domain.ErrFetchFailed
	ErrInvalidSortKey = domain.ErrInvalidSortKey
	ErrInvalidRecord  = domain.ErrInvalidRecord
	ErrInvalidParams  = domain.ErrInvalidParams
)

// ErrReadOnlySource is returned by Save when the record source is not a list store.
var ErrReadOnlySource = errors.New("pollsearch: record source is read-only")

// FetchError carries the scope whose records failed to load.
type FetchError = domain.FetchError
