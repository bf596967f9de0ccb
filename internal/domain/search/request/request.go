package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/pollsearch/internal/domain"
	"github.com/kailas-cloud/pollsearch/internal/domain/search/order"
)

// Search parameter limits.
const (
	MaxScopeLength = 256
	// MaxTermLength is the maximum allowed raw search term length.
	MaxTermLength = 1024
	DefaultPage   = 1
)

// Request is a validated one-shot search over a scope's result set.
type Request struct {
	scope   string
	term    string
	sortKey order.Key
	page    int
}

// New validates and normalizes search parameters.
// An empty sort resolves to def; page defaults to 1. The term is kept raw,
// normalization happens in the filter.
func New(scope, term, sortExpr string, page int, presets order.Presets, def order.Key) (Request, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return Request{}, domain.ErrScopeRequired
	}
	if len(scope) > MaxScopeLength {
		return Request{}, fmt.Errorf("%w: scope too long (max %d chars)", domain.ErrInvalidParams, MaxScopeLength)
	}
	if len(term) > MaxTermLength {
		return Request{}, fmt.Errorf("%w: term too long (max %d chars)", domain.ErrInvalidParams, MaxTermLength)
	}

	key := def
	if strings.TrimSpace(sortExpr) != "" {
		k, err := presets.Resolve(sortExpr)
		if err != nil {
			return Request{}, err
		}
		key = k
	}

	if page <= 0 {
		page = DefaultPage
	}

	return Request{
		scope:   scope,
		term:    term,
		sortKey: key,
		page:    page,
	}, nil
}

// Scope returns the result set identifier.
func (r *Request) Scope() string { return r.scope }

// Term returns the raw search term.
func (r *Request) Term() string { return r.term }

// Sort returns the resolved sort key.
func (r *Request) Sort() order.Key { return r.sortKey }

// Page returns the requested page (before clamping).
func (r *Request) Page() int { return r.page }
