// Package mongo stores the audit log in MongoDB when a document store is
// configured.
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Store is a connected MongoDB database holding the audit collection.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
	log     zerolog.Logger
}

// Open connects, pings the primary and prepares the audit indexes.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("tracker-api").
		SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := &Store{client: client, db: client.Database(cfg.Database), timeout: timeout, log: log}
	if err := s.Audit().EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Info().Str("database", cfg.Database).Msg("mongo audit store ready")
	return s, nil
}

func (s *Store) Audit() *AuditRepository {
	return &AuditRepository{coll: s.db.Collection(auditCollection), timeout: s.timeout}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects, waiting at most the store timeout for in-flight work.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		s.log.Warn().Err(err).Msg("mongo disconnect")
		return err
	}
	return nil
}

// drop removes the whole database. Tests only.
func (s *Store) drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}
