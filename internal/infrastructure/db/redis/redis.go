package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// dialWait bounds the initial dial and ping when Options.DialWait is unset.
const dialWait = 5 * time.Second

// Options locate the Redis instance that holds portal sessions.
type Options struct {
	Addr     string
	DB       int
	DialWait time.Duration
}

// Open dials Redis and returns a session repository that owns the client.
// The store must answer a ping before Open returns.
func Open(ctx context.Context, opts Options) (*SessionRepository, error) {
	wait := opts.DialWait
	if wait <= 0 {
		wait = dialWait
	}

	client := redis.NewClient(&redis.Options{Addr: opts.Addr, DB: opts.DB, DialTimeout: wait})

	pingCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session store %s unreachable: %w", opts.Addr, err)
	}
	return NewSessionRepository(client), nil
}

// Close releases the underlying client.
func (r *SessionRepository) Close() error {
	return r.client.Close()
}
