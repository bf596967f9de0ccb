package resultset

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/kailas-cloud/pollsearch/internal/domain"
	"github.com/kailas-cloud/pollsearch/internal/domain/record"
)

// mockCache implements Cache with fetch-once semantics.
type mockCache struct {
	mu      sync.Mutex
	source  map[string][]record.Record
	entries map[string][]record.Record
	errs    map[string]error
	gates   map[string]chan struct{}
	entered chan string
	calls   int
}

func newMockCache(source map[string][]record.Record) *mockCache {
	return &mockCache{
		source:  source,
		entries: map[string][]record.Record{},
		errs:    map[string]error{},
		gates:   map[string]chan struct{}{},
		entered: make(chan string, 16),
	}
}

func (m *mockCache) Get(ctx context.Context, scope string) ([]record.Record, error) {
	m.mu.Lock()
	m.calls++
	if recs, ok := m.entries[scope]; ok {
		m.mu.Unlock()
		return recs, nil
	}
	gate := m.gates[scope]
	m.mu.Unlock()

	m.entered <- scope
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs[scope]; err != nil {
		return nil, domain.NewFetchError(scope, err)
	}
	recs, ok := m.source[scope]
	if !ok {
		return nil, domain.NewFetchError(scope, domain.ErrScopeNotFound)
	}
	m.entries[scope] = recs
	return recs, nil
}

func (m *mockCache) Peek(scope string) ([]record.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs, ok := m.entries[scope]
	return recs, ok
}

func (m *mockCache) gate(scope string) chan struct{} {
	ch := make(chan struct{})
	m.mu.Lock()
	m.gates[scope] = ch
	m.mu.Unlock()
	return ch
}

func (m *mockCache) setErr(scope string, err error) {
	m.mu.Lock()
	if err == nil {
		delete(m.errs, scope)
	} else {
		m.errs[scope] = err
	}
	m.mu.Unlock()
}

func poll(id float64, title, band string) record.Record {
	f := map[string]record.Value{
		"Id":    record.NumberValue(id),
		"Title": record.StringValue(title),
	}
	if band != "" {
		f["BandName"] = record.StringValue(band)
	}
	return record.New(f)
}

// numbered builds n records with ids 1..n.
func numbered(n int) []record.Record {
	out := make([]record.Record, n)
	for i := range out {
		out[i] = poll(float64(i+1), "entry", "")
	}
	return out
}

func ids(recs []record.Record) []float64 {
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i], _ = r.Get("Id").Float()
	}
	return out
}

func equalIDs(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func seeded() *rand.Rand { return rand.New(rand.NewPCG(3, 5)) }

func newTestProcessor(c Cache, cfg Config) *Processor {
	if cfg.NewRand == nil {
		cfg.NewRand = seeded
	}
	return New(c, cfg, nil)
}
