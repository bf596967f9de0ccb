package record

import "context"

// mockStore implements the consumer interface for tests.
type mockStore struct {
	lists       map[string][]string
	rangeFn     func(ctx context.Context, key string) ([]string, error)
	replaceFn   func(ctx context.Context, key string, values []string) error
	lastReplace string
}

func newMockStore() *mockStore {
	return &mockStore{lists: map[string][]string{}}
}

func (m *mockStore) ListRange(ctx context.Context, key string) ([]string, error) {
	if m.rangeFn != nil {
		return m.rangeFn(ctx, key)
	}
	return m.lists[key], nil
}

func (m *mockStore) ListReplace(ctx context.Context, key string, values []string) error {
	m.lastReplace = key
	if m.replaceFn != nil {
		return m.replaceFn(ctx, key, values)
	}
	m.lists[key] = values
	return nil
}
