package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/cohortly/cohortly/internal/config"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/logger"
	"github.com/cohortly/cohortly/internal/types"
)

// Store owns the MongoDB client and database handle shared by all
// repositories, and implements types.TxRunner for multi-document
// transactions.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *logger.Logger
}

// NewStore connects to MongoDB and verifies connectivity.
func NewStore(cfg *config.Configuration, log *logger.Logger) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetTimeout(30 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to MongoDB").
			Mark(ierr.ErrDatabase)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, ierr.WithError(err).
			WithHint("MongoDB is unreachable").
			Mark(ierr.ErrDatabase)
	}

	return &Store{
		client: client,
		db:     client.Database(cfg.Mongo.Database),
		logger: log,
	}, nil
}

// Collection returns a handle by well-known name.
func (s *Store) Collection(name types.CollectionName) *mongo.Collection {
	return s.db.Collection(string(name))
}

// WithTransaction runs fn inside a single multi-document transaction. The
// session is carried on the context, so repository calls made with the ctx
// passed to fn all join the same transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to start database session").
			Mark(ierr.ErrDatabase)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, fn(ctx)
	})
	return err
}

// Migrate creates the indexes the engine relies on. The unique enrollment
// index is the backstop for concurrent duplicate deliveries of the same
// payment event.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[types.CollectionName][]mongo.IndexModel{
		types.CollectionEnrollments: {
			{
				Keys: bson.D{
					{Key: "account_id", Value: 1},
					{Key: "cohort_id", Value: 1},
					{Key: "payment_id", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "payment_id", Value: 1}}},
		},
		types.CollectionAccounts: {
			{Keys: bson.D{{Key: "subscription.expiry_at", Value: 1}}},
		},
		types.CollectionPayments: {
			{Keys: bson.D{{Key: "account_id", Value: 1}}},
		},
	}

	for col, models := range indexes {
		if _, err := s.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return ierr.WithError(err).
				WithHintf("Failed to create indexes for %s", col).
				Mark(ierr.ErrDatabase)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func now() time.Time {
	return time.Now().UTC()
}
