package resultset

import (
	"context"
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pollsearch/internal/domain"
	"github.com/kailas-cloud/pollsearch/internal/domain/record"
	"github.com/kailas-cloud/pollsearch/internal/domain/search/order"
	"github.com/kailas-cloud/pollsearch/internal/logger"
)

// state is the mutable part of a widget.
type state struct {
	scope   string
	loaded  bool
	ordered []record.Record // session copy, last sort applied
	term    string
	sortKey order.Key
	page    int
}

// Session is one widget instance. Operations are serialized; the remote
// fetch runs outside the lock and marks the session as loading.
type Session struct {
	p *Processor

	mu sync.Mutex
	state
	loading bool
	// gen increments with each scope selection; stale fetch results are dropped.
	gen uint64
	rnd *rand.Rand
}

// SelectScope switches to scope, fetching its records on first use.
// On fetch failure the previous view is kept and the error is returned.
func (s *Session) SelectScope(ctx context.Context, scope string) (View, error) {
	if err := s.p.checkScope(scope); err != nil {
		return View{}, err
	}

	s.mu.Lock()
	if recs, ok := s.p.cache.Peek(scope); ok {
		s.gen++
		s.loading = false
		s.install(scope, recs)
		defer s.mu.Unlock()
		return s.p.render(&s.state, s.loading), nil
	}
	s.gen++
	gen := s.gen
	s.loading = true
	s.mu.Unlock()

	recs, err := s.p.cache.Get(ctx, scope)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// A newer selection owns the loading state.
		return s.p.render(&s.state, s.loading), nil
	}
	s.loading = false
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to load result set",
			zap.String("scope", scope), zap.Error(err))
		return s.p.render(&s.state, false), err
	}

	s.install(scope, recs)
	return s.p.render(&s.state, false), nil
}

// install replaces the session's records with a sorted copy of recs.
func (s *Session) install(scope string, recs []record.Record) {
	s.scope = scope
	s.loaded = true
	s.ordered = s.p.order(recs, s.sortKey, s.rnd)
	s.page = 1
}

// Search sets the term and returns to page 1.
func (s *Session) Search(term string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.term = term
	s.page = 1
	return s.p.render(&s.state, s.loading)
}

// ChangeSort resolves a preset name or key expression, re-sorts the
// session's records and returns to page 1.
func (s *Session) ChangeSort(key string) (View, error) {
	k, err := s.p.cfg.Presets.Resolve(key)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortKey = k
	if len(s.ordered) > 0 {
		order.Apply(s.ordered, k, s.rnd)
	}
	s.page = 1
	return s.p.render(&s.state, s.loading), nil
}

// SelectPage moves to page n, clamped into range.
func (s *Session) SelectPage(n int) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return View{}, domain.ErrNoScope
	}
	s.page = n
	return s.p.render(&s.state, s.loading), nil
}

// Next advances one page when the next link is shown.
func (s *Session) Next() (View, error) {
	return s.step(1)
}

// Prev goes back one page when the previous link is shown.
func (s *Session) Prev() (View, error) {
	return s.step(-1)
}

func (s *Session) step(delta int) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return View{}, domain.ErrNoScope
	}
	cur := s.p.render(&s.state, s.loading)
	if (delta > 0 && !cur.Page.ShowNext) || (delta < 0 && !cur.Page.ShowPrev) {
		return cur, nil
	}
	s.page += delta
	return s.p.render(&s.state, s.loading), nil
}

// View renders the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.render(&s.state, s.loading)
}
