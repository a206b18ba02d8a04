package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/mind-engage/fundreview/internal/audit"
)

// Registry keeps one review Session per project.
type Registry struct {
	api        Backend
	thresholds ThresholdSource
	events     audit.Log

	// Backoff between load retries.
	Backoff time.Duration
	// IdleTTL evicts sessions nobody asked for in this long. Zero disables eviction.
	IdleTTL time.Duration

	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	s    *Session
	used time.Time
}

func NewRegistry(api Backend, thr ThresholdSource, events audit.Log) *Registry {
	return &Registry{
		api:        api,
		thresholds: thr,
		events:     events,
		Backoff:    500 * time.Millisecond,
		IdleTTL:    30 * time.Minute,
		now:        time.Now,
		sessions:   map[string]*entry{},
	}
}

// Session returns the session for projectID, creating an idle one if needed.
func (r *Registry) Session(projectID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweep(now)
	e, ok := r.sessions[projectID]
	if !ok {
		e = &entry{s: newSession(projectID, r.api, r.thresholds, r.events, r.Backoff)}
		r.sessions[projectID] = e
	}
	e.used = now
	return e.s
}

// Load loads (or refreshes) the session for projectID. A session that never
// loaded successfully is forgotten again, so unknown ids do not pile up.
func (r *Registry) Load(ctx context.Context, projectID string) (*Session, error) {
	s := r.Session(projectID)
	if err := s.Load(ctx); err != nil {
		if s.State() == StateIdle {
			r.drop(projectID, s)
		}
		return s, err
	}
	return s, nil
}

// Len reports how many sessions are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) lookup(projectID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[projectID]
	if !ok {
		return nil, false
	}
	return e.s, true
}

func (r *Registry) drop(projectID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[projectID]; ok && e.s == s {
		delete(r.sessions, projectID)
	}
}

// sweep removes idle sessions. Sessions mid-load or mid-submit are kept.
// Caller holds r.mu.
func (r *Registry) sweep(now time.Time) {
	if r.IdleTTL <= 0 {
		return
	}
	for id, e := range r.sessions {
		if now.Sub(e.used) < r.IdleTTL {
			continue
		}
		switch e.s.State() {
		case StateLoading, StateSubmitting:
			continue
		}
		delete(r.sessions, id)
	}
}
