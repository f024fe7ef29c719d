package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusdesk/school-portal/internal/core/domain"
)

const defaultTTL = 24 * time.Hour

// Repository persists session state between browser requests.
type Repository interface {
	Load(ctx context.Context, id string) (State, error)
	Save(ctx context.Context, id string, st State, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Manager loads and saves Sessions.
type Manager struct {
	repo    Repository
	decoder *Decoder
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewManager wires a Manager. A non-positive ttl falls back to 24h.
func NewManager(repo Repository, decoder *Decoder, ttl time.Duration, log zerolog.Logger) *Manager {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{
		repo:    repo,
		decoder: decoder,
		ttl:     ttl,
		now:     time.Now,
		log:     log.With().Str("component", "session").Logger(),
	}
}

// WithClock replaces the clock used for expiry checks. Tests only.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// NewID returns a fresh session id.
func (m *Manager) NewID() string {
	return uuid.NewString()
}

// Load returns the session stored under id, or an empty one when none exists.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	st, err := m.repo.Load(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return New(id, st, m.decoder, m.now, m.log), nil
}

// Save persists the session if it changed.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if !s.Dirty() {
		return nil
	}
	if err := m.repo.Save(ctx, s.ID(), s.Snapshot(), m.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Destroy drops everything stored for the session.
func (m *Manager) Destroy(ctx context.Context, s *Session) error {
	s.clear()
	if err := m.repo.Delete(ctx, s.ID()); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Ping checks the repository.
func (m *Manager) Ping(ctx context.Context) error {
	return m.repo.Ping(ctx)
}
