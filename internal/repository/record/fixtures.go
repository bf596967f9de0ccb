package record

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/pollsearch/internal/domain"
	domrec "github.com/kailas-cloud/pollsearch/internal/domain/record"
)

// fixtureFile is the on-disk shape: scopes -> ordered records.
type fixtureFile struct {
	Scopes map[string][]map[string]any `yaml:"scopes"`
}

// Fixtures is an in-memory record source loaded from YAML.
type Fixtures struct {
	scopes map[string][]domrec.Record
}

// LoadFixtures reads a fixtures file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path from operator config
	if err != nil {
		return nil, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes fixtures YAML.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	scopes := make(map[string][]domrec.Record, len(f.Scopes))
	for scope, raws := range f.Scopes {
		recs := make([]domrec.Record, 0, len(raws))
		for i, raw := range raws {
			rec, err := domrec.FromMap(raw)
			if err != nil {
				return nil, fmt.Errorf("scope %q record %d: %w", scope, i, err)
			}
			recs = append(recs, rec)
		}
		scopes[scope] = recs
	}
	return &Fixtures{scopes: scopes}, nil
}

// Fetch returns a copy of the scope's records.
func (f *Fixtures) Fetch(_ context.Context, scope string) ([]domrec.Record, error) {
	recs, ok := f.scopes[scope]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrScopeNotFound, scope)
	}
	out := make([]domrec.Record, len(recs))
	copy(out, recs)
	return out, nil
}

// Scopes returns the fixture scope names in sorted order.
func (f *Fixtures) Scopes() []string {
	names := make([]string, 0, len(f.scopes))
	for s := range f.scopes {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}

// Ping always succeeds; fixtures live in memory.
func (f *Fixtures) Ping(context.Context) error { return nil }
