package resultset

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pollsearch/internal/domain"
	"github.com/kailas-cloud/pollsearch/internal/domain/record"
	"github.com/kailas-cloud/pollsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/pollsearch/internal/domain/search/order"
	"github.com/kailas-cloud/pollsearch/internal/domain/search/page"
	"github.com/kailas-cloud/pollsearch/internal/domain/search/request"
)

// ScopePlaceholder is replaced with the scope in the playlist URL template.
const ScopePlaceholder = "{scope}"

// Config holds widget settings shared by every session.
type Config struct {
	PageSize           int
	MaxPaginationLinks int
	SearchFields       []string
	DefaultSort        order.Key
	Presets            order.Presets
	// PlaylistURLTemplate builds the play-all link, e.g. "/playlists/pollquestion/{scope}".
	PlaylistURLTemplate string
	// Scopes restricts selectable scopes; empty allows any.
	Scopes []string
	// NewRand seeds each session's shuffle source; nil uses a random seed.
	NewRand func() *rand.Rand
}

// Processor applies search, sort and pagination over cached result sets.
type Processor struct {
	cache  Cache
	cfg    Config
	logger *zap.Logger
}

// New creates a Processor. Zero config values fall back to widget defaults.
func New(cache Cache, cfg Config, logger *zap.Logger) *Processor {
	if cfg.PageSize <= 0 {
		cfg.PageSize = page.DefaultPageSize
	}
	if cfg.MaxPaginationLinks <= 0 {
		cfg.MaxPaginationLinks = page.DefaultMaxPaginationLinks
	}
	if len(cfg.SearchFields) == 0 {
		cfg.SearchFields = filter.DefaultFields
	}
	if cfg.Presets == nil {
		cfg.Presets = order.DefaultPresets()
	}
	if cfg.DefaultSort.IsZero() {
		cfg.DefaultSort = cfg.Presets[order.PresetRecent]
	}
	if cfg.NewRand == nil {
		cfg.NewRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // shuffle, not crypto
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{cache: cache, cfg: cfg, logger: logger}
}

// Config returns the effective configuration.
func (p *Processor) Config() Config { return p.cfg }

// Presets returns the named sort options.
func (p *Processor) Presets() order.Presets { return p.cfg.Presets }

// NewSession starts a widget session with no scope selected.
func (p *Processor) NewSession() *Session {
	return &Session{
		p:     p,
		state: state{sortKey: p.cfg.DefaultSort, page: 1},
		rnd:   p.cfg.NewRand(),
	}
}

// Search runs a one-shot query without session state.
func (p *Processor) Search(ctx context.Context, req request.Request) (View, error) {
	if err := p.checkScope(req.Scope()); err != nil {
		return View{}, err
	}
	recs, err := p.cache.Get(ctx, req.Scope())
	if err != nil {
		return View{}, fmt.Errorf("load scope: %w", err)
	}

	st := state{
		scope:   req.Scope(),
		term:    req.Term(),
		sortKey: req.Sort(),
		page:    req.Page(),
		loaded:  true,
	}
	st.ordered = p.order(recs, st.sortKey, p.cfg.NewRand())
	return p.render(&st, false), nil
}

// checkScope validates a scope key against the configured scope list.
func (p *Processor) checkScope(scope string) error {
	if strings.TrimSpace(scope) == "" {
		return domain.ErrScopeRequired
	}
	if len(p.cfg.Scopes) > 0 && !slices.Contains(p.cfg.Scopes, scope) {
		return fmt.Errorf("%w: %q", domain.ErrScopeNotFound, scope)
	}
	return nil
}

// order copies recs and applies the sort. Empty sets stay unsorted.
func (p *Processor) order(recs []record.Record, k order.Key, rnd *rand.Rand) []record.Record {
	out := make([]record.Record, len(recs))
	copy(out, recs)
	if len(out) > 0 {
		order.Apply(out, k, rnd)
	}
	return out
}

// render filters, pages and snapshots st. It stores the clamped page back.
func (p *Processor) render(st *state, loading bool) View {
	v := View{
		Scope:   st.scope,
		Term:    st.term,
		Sort:    p.cfg.Presets.NameOf(st.sortKey),
		Loading: loading,
	}
	if st.scope != "" && p.cfg.PlaylistURLTemplate != "" {
		v.PlayAllURL = strings.ReplaceAll(p.cfg.PlaylistURLTemplate, ScopePlaceholder, st.scope)
	}

	v.Needle = filter.New(st.term, p.cfg.SearchFields).Needle()
	filtered := filter.Apply(st.ordered, st.term, p.cfg.SearchFields)

	v.Page = page.Compute(len(filtered), st.page, p.cfg.PageSize, p.cfg.MaxPaginationLinks)
	st.page = v.Page.CurrentPage

	pageRecs := page.Slice(filtered, v.Page)
	v.Records = make([]record.Record, len(pageRecs))
	copy(v.Records, pageRecs)
	return v
}
