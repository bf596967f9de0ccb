package pollsearch

import (
	"context"

	"github.com/kailas-cloud/pollsearch/internal/domain/record"
	"github.com/kailas-cloud/pollsearch/internal/domain/search/page"
	"github.com/kailas-cloud/pollsearch/internal/usecase/resultset"
)

// Record is one poll result: a flat map of scalar fields.
type Record = record.Record

// Value is a record field value (null, string or number).
type Value = record.Value

// View is the rendered widget state: the current page plus pagination.
type View = resultset.View

// Window is the pagination metadata of a View.
type Window = page.Window

// Session is one widget instance. Its methods are safe for concurrent use.
type Session = resultset.Session

// Source loads the complete record set of a scope.
type Source interface {
	Fetch(ctx context.Context, scope string) ([]Record, error)
}

// NewRecord builds a record from plain Go values (nil, string, numbers).
func NewRecord(fields map[string]any) (Record, error) {
	return record.FromMap(fields)
}

// Widget defaults.
const (
	DefaultPageSize           = page.DefaultPageSize
	DefaultMaxPaginationLinks = page.DefaultMaxPaginationLinks
)
