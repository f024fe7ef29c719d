package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// dialWait bounds connecting, pinging and index creation when Options.DialWait is unset.
const dialWait = 10 * time.Second

// Options locate the MongoDB database that holds portal sessions.
type Options struct {
	URI      string
	Database string
	DialWait time.Duration
}

// Open connects to MongoDB, verifies the server and prepares the sessions
// collection. The returned repository owns the client; release it with Close.
func Open(ctx context.Context, opts Options) (*SessionRepository, error) {
	wait := opts.DialWait
	if wait <= 0 {
		wait = dialWait
	}
	openCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	client, err := mongo.Connect(openCtx, options.Client().ApplyURI(opts.URI).SetAppName("school-portal"))
	if err != nil {
		return nil, fmt.Errorf("connect session store: %w", err)
	}
	repo := NewSessionRepository(client.Database(opts.Database))

	if err := client.Ping(openCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("session store unreachable: %w", err)
	}
	if err := repo.EnsureIndexes(openCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return repo, nil
}

// Close disconnects the client behind the repository.
func (r *SessionRepository) Close(ctx context.Context) error {
	return r.coll.Database().Client().Disconnect(ctx)
}
