package record

import (
	"context"
	"encoding/json"
	"fmt"

	domrec "github.com/kailas-cloud/pollsearch/internal/domain/record"
)

// DefaultKeyPrefix namespaces list keys in a shared store.
const DefaultKeyPrefix = "pollsearch:"

// store is the consumer interface for result lists (ISP).
type store interface {
	ListRange(ctx context.Context, key string) ([]string, error)
	ListReplace(ctx context.Context, key string, values []string) error
}

// Repo keeps each scope's records as an ordered list of JSON documents.
type Repo struct {
	store  store
	prefix string
}

// New creates a record repository over a list store.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Fetch returns the stored records of scope in stored order.
// A scope that was never saved yields an empty result set.
func (r *Repo) Fetch(ctx context.Context, scope string) ([]domrec.Record, error) {
	key := r.scopeKey(scope)
	raw, err := r.store.ListRange(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list range %s: %w", key, err)
	}

	out := make([]domrec.Record, 0, len(raw))
	for i, s := range raw {
		var rec domrec.Record
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("decode %s[%d]: %w", key, i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Save replaces the stored records of scope.
func (r *Repo) Save(ctx context.Context, scope string, records []domrec.Record) error {
	values := make([]string, 0, len(records))
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", i, err)
		}
		values = append(values, string(data))
	}

	key := r.scopeKey(scope)
	if err := r.store.ListReplace(ctx, key, values); err != nil {
		return fmt.Errorf("list replace %s: %w", key, err)
	}
	return nil
}

func (r *Repo) scopeKey(scope string) string {
	return r.prefix + "scope:" + scope
}
