package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/pollsearch/internal/db"
)

// ListRange returns every element of the list at key. A missing key yields an empty slice.
func (s *Store) ListRange(ctx context.Context, key string) ([]string, error) {
	cmd := s.b().Lrange().Key(key).Start(0).Stop(-1).Build()
	vals, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return []string{}, nil
		}
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	return vals, nil
}

// ListReplace swaps the list at key for values inside MULTI/EXEC.
// An empty values slice deletes the key.
func (s *Store) ListReplace(ctx context.Context, key string, values []string) error {
	cmds := make([]rueidis.Completed, 0, 4)
	cmds = append(cmds,
		s.b().Multi().Build(),
		s.b().Del().Key(key).Build(),
	)
	if len(values) > 0 {
		cmds = append(cmds, s.b().Rpush().Key(key).Element(values...).Build())
	}
	cmds = append(cmds, s.b().Exec().Build())

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: opForQueued(i, len(values) > 0), Err: fmt.Errorf("key %s: %w", key, err)}
		}
	}
	return nil
}

// opForQueued names the command at position i of the ListReplace transaction.
func opForQueued(i int, push bool) string {
	switch {
	case i == 1:
		return db.OpDel
	case i == 2 && push:
		return db.OpRPush
	default:
		return "EXEC"
	}
}
