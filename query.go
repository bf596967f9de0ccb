package pollsearch

import (
	"context"

	"github.com/kailas-cloud/pollsearch/internal/domain/search/request"
)

// QueryBuilder is a fluent builder for one-shot, stateless queries.
type QueryBuilder struct {
	c     *Client
	scope string
	term  string
	sort  string
	page  int
}

// Query starts a one-shot query over scope.
func (c *Client) Query(scope string) *QueryBuilder {
	return &QueryBuilder{c: c, scope: scope, page: request.DefaultPage}
}

// Term sets the search term. Characters outside [A-Za-z0-9] are dropped before
// a case-insensitive substring match.
func (b *QueryBuilder) Term(term string) *QueryBuilder {
	b.term = term
	return b
}

// Sort sets a sort option name or a "field:asc|desc" / "random" expression.
func (b *QueryBuilder) Sort(key string) *QueryBuilder {
	b.sort = key
	return b
}

// Page sets the 1-based page. Out-of-range pages are clamped.
func (b *QueryBuilder) Page(n int) *QueryBuilder {
	b.page = n
	return b
}

// Do loads the scope (once per client) and renders the requested page.
func (b *QueryBuilder) Do(ctx context.Context) (View, error) {
	cfg := b.c.proc.Config()
	req, err := request.New(b.scope, b.term, b.sort, b.page, cfg.Presets, cfg.DefaultSort)
	if err != nil {
		return View{}, err
	}
	return b.c.proc.Search(ctx, req)
}

// QueryAs runs a one-shot query and decodes the page records into T.
func QueryAs[T any](ctx context.Context, b *QueryBuilder) ([]T, View, error) {
	v, err := b.Do(ctx)
	if err != nil {
		return nil, View{}, err
	}
	items, err := DecodeView[T](v)
	if err != nil {
		return nil, v, err
	}
	return items, v, nil
}
