package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campusdesk/school-portal/internal/core/domain"
	"github.com/campusdesk/school-portal/internal/core/session"
)

// SessionRepository stores portal sessions as JSON values that expire with the session TTL.
// Key format: session:<id>
type SessionRepository struct {
	client *redis.Client
}

var _ session.Repository = (*SessionRepository)(nil)

// NewSessionRepository wraps the given Redis client.
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func (r *SessionRepository) Load(ctx context.Context, id string) (session.State, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.State{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return session.State{}, fmt.Errorf("get session: %w", err)
	}
	var st session.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return session.State{}, fmt.Errorf("decode session: %w", err)
	}
	return st, nil
}

func (r *SessionRepository) Save(ctx context.Context, id string, st session.State, ttl time.Duration) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.client.Set(ctx, r.key(id), raw, ttl).Err()
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *SessionRepository) key(id string) string {
	return "session:" + id
}
