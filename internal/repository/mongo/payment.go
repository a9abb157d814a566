package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/cohortly/cohortly/internal/domain/payment"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/types"
)

type paymentRepository struct {
	store *Store
}

// NewPaymentRepository returns the MongoDB-backed processed-payments ledger.
func NewPaymentRepository(store *Store) payment.Repository {
	return &paymentRepository{store: store}
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	var m paymentModel
	err := r.store.Collection(types.CollectionPayments).
		FindOne(ctx, bson.M{"_id": id}).
		Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up processed payment").
			WithReportableDetails(map[string]any{"payment_id": id}).
			Mark(ierr.ErrDatabase)
	}
	return fromPaymentModel(&m), nil
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	m := toPaymentModel(p)

	_, err := r.store.Collection(types.CollectionPayments).InsertOne(ctx, m)
	if err != nil {
		// The payment id is the primary key, so a concurrent delivery of the
		// same payment surfaces here as a duplicate.
		if mongo.IsDuplicateKeyError(err) {
			return ierr.WithError(err).
				WithHint("This payment has already been processed").
				WithReportableDetails(map[string]any{"payment_id": p.ID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to record processed payment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
