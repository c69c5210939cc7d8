package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/core/ports"
)

const auditCollection = "audit_log"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

type auditDoc struct {
	ID        string    `bson:"_id"`
	Operation string    `bson:"operation"`
	Outcome   string    `bson:"outcome"`
	ActorID   int64     `bson:"actor_id,omitempty"`
	TargetID  int64     `bson:"target_id,omitempty"`
	Username  string    `bson:"username,omitempty"`
	Origin    string    `bson:"origin,omitempty"`
	Detail    string    `bson:"detail,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// EnsureIndexes creates the indexes the admin audit view sorts and filters on.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "operation", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	return nil
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := auditDoc{
		ID:        entry.ID,
		Operation: string(entry.Operation),
		Outcome:   string(entry.Outcome),
		ActorID:   entry.ActorID,
		TargetID:  entry.TargetID,
		Username:  entry.Username,
		Origin:    entry.Origin,
		Detail:    entry.Detail,
		CreatedAt: entry.CreatedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// List returns the newest entries first.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit: %w: %w", domain.ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var docs []auditDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit: %w", err)
	}

	entries := make([]domain.AuditEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, domain.AuditEntry{
			ID:        d.ID,
			Operation: domain.AuditOperation(d.Operation),
			Outcome:   domain.AuditOutcome(d.Outcome),
			ActorID:   d.ActorID,
			TargetID:  d.TargetID,
			Username:  d.Username,
			Origin:    d.Origin,
			Detail:    d.Detail,
			CreatedAt: d.CreatedAt,
		})
	}
	return entries, nil
}
