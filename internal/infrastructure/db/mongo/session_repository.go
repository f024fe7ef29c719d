package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusdesk/school-portal/internal/core/domain"
	"github.com/campusdesk/school-portal/internal/core/session"
)

const sessionCollection = "sessions"

// SessionRepository stores portal sessions in MongoDB. Expired documents are
// removed by a TTL index on expires_at.
type SessionRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ session.Repository = (*SessionRepository)(nil)

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection(sessionCollection), now: time.Now}
}

type mongoSession struct {
	ID        string            `bson:"_id"`
	Token     string            `bson:"token,omitempty"`
	Cookies   map[string]string `bson:"cookies,omitempty"`
	ExpiresAt time.Time         `bson:"expires_at"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// EnsureIndexes creates the TTL index. Safe to call on every start.
func (r *SessionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
	})
	if err != nil {
		return fmt.Errorf("create session ttl index: %w", err)
	}
	return nil
}

func (r *SessionRepository) Load(ctx context.Context, id string) (session.State, error) {
	var doc mongoSession
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "expires_at": bson.M{"$gt": r.now()}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return session.State{}, domain.ErrSessionNotFound
		}
		return session.State{}, fmt.Errorf("find session: %w", err)
	}
	return session.State{Token: doc.Token, Cookies: doc.Cookies}, nil
}

func (r *SessionRepository) Save(ctx context.Context, id string, st session.State, ttl time.Duration) error {
	now := r.now().UTC()
	doc := mongoSession{
		ID:        id,
		Token:     st.Token,
		Cookies:   st.Cookies,
		ExpiresAt: now.Add(ttl),
		UpdatedAt: now,
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.coll.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}
