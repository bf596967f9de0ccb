package resultset

import (
	"context"

	"github.com/kailas-cloud/pollsearch/internal/domain/record"
)

// Cache serves each scope's records, fetching them on first use.
// Returned slices are shared and must not be reordered in place.
type Cache interface {
	Get(ctx context.Context, scope string) ([]record.Record, error)
	Peek(scope string) ([]record.Record, bool)
}
