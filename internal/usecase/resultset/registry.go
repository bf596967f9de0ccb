package resultset

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/pollsearch/internal/domain"
)

// Registry defaults.
const (
	DefaultMaxSessions = 1000
	DefaultIdleTTL     = 30 * time.Minute
)

type entry struct {
	session  *Session
	lastUsed time.Time
}

// Registry holds server-side sessions keyed by id.
type Registry struct {
	p       *Processor
	max     int
	idleTTL time.Duration
	active  prometheus.Gauge
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// WithActiveGauge reports the session count to g.
func WithActiveGauge(g prometheus.Gauge) RegistryOption {
	return func(r *Registry) { r.active = g }
}

// NewRegistry creates a registry bounded by max sessions; idle sessions
// older than idleTTL are removed by Sweep.
func NewRegistry(p *Processor, maxSessions int, idleTTL time.Duration, opts ...RegistryOption) *Registry {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	r := &Registry{
		p:        p,
		max:      maxSessions,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Create starts a new session and returns its id.
func (r *Registry) Create() (string, *Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) >= r.max {
		return "", nil, domain.ErrTooManySessions
	}
	id := uuid.NewString()
	s := r.p.NewSession()
	r.sessions[id] = &entry{session: s, lastUsed: r.now()}
	r.report()
	return id, s, nil
}

// Get returns the session and marks it used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	e.lastUsed = r.now()
	return e.session, nil
}

// Delete removes a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, id)
	r.report()
	return nil
}

// Sweep evicts sessions idle longer than the TTL and returns how many went.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.idleTTL)
	n := 0
	for id, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	if n > 0 {
		r.report()
	}
	return n
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) report() {
	if r.active != nil {
		r.active.Set(float64(len(r.sessions)))
	}
}
