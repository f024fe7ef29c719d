// Package memory keeps portal sessions in process memory. Suitable for a
// single instance; sessions are lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/campusdesk/school-portal/internal/core/domain"
	"github.com/campusdesk/school-portal/internal/core/session"
)

type entry struct {
	state     session.State
	expiresAt time.Time
}

type SessionRepository struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

var _ session.Repository = (*SessionRepository)(nil)

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{entries: make(map[string]entry), now: time.Now}
}

func (r *SessionRepository) Load(_ context.Context, id string) (session.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok || !e.expiresAt.After(r.now()) {
		return session.State{}, domain.ErrSessionNotFound
	}
	return copyState(e.state), nil
}

func (r *SessionRepository) Save(_ context.Context, id string, st session.State, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = entry{state: copyState(st), expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}

func (r *SessionRepository) Ping(context.Context) error { return nil }

// Sweep drops every entry that expired at or before now and returns how many were removed.
func (r *SessionRepository) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.entries {
		if !e.expiresAt.After(now) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}

// Len is the number of stored entries, expired or not.
func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func copyState(st session.State) session.State {
	out := session.State{Token: st.Token}
	if st.Cookies != nil {
		out.Cookies = make(map[string]string, len(st.Cookies))
		for k, v := range st.Cookies {
			out.Cookies[k] = v
		}
	}
	return out
}
