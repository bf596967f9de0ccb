package resultcache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kailas-cloud/pollsearch/internal/domain/record"
)

// mockSource implements Source for tests.
type mockSource struct {
	mu      sync.Mutex
	records map[string][]record.Record
	err     error
	calls   atomic.Int32
	// gate, when set, blocks Fetch until closed.
	gate chan struct{}
}

func (m *mockSource) Fetch(ctx context.Context, scope string) ([]record.Record, error) {
	m.calls.Add(1)
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.records[scope], nil
}

func (m *mockSource) setErr(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func recs(ids ...float64) []record.Record {
	out := make([]record.Record, len(ids))
	for i, id := range ids {
		out[i] = record.New(map[string]record.Value{"Id": record.NumberValue(id)})
	}
	return out
}
