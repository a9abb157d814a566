package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/cohortly/cohortly/internal/domain/enrollment"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/types"
)

type enrollmentRepository struct {
	store *Store
}

// NewEnrollmentRepository returns the MongoDB-backed enrollment ledger.
func NewEnrollmentRepository(store *Store) enrollment.Repository {
	return &enrollmentRepository{store: store}
}

func (r *enrollmentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*enrollment.Enrollment, error) {
	var m enrollmentModel
	err := r.store.Collection(types.CollectionEnrollments).
		FindOne(ctx, bson.M{"payment_id": paymentID}).
		Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up enrollment by payment id").
			WithReportableDetails(map[string]any{"payment_id": paymentID}).
			Mark(ierr.ErrDatabase)
	}
	return fromEnrollmentModel(&m)
}

func (r *enrollmentRepository) Create(ctx context.Context, e *enrollment.Enrollment) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	m := toEnrollmentModel(e)

	_, err := r.store.Collection(types.CollectionEnrollments).InsertOne(ctx, m)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ierr.WithError(err).
				WithHint("An enrollment for this payment already exists").
				WithReportableDetails(map[string]any{
					"account_id": e.AccountID,
					"cohort_id":  e.CohortID,
					"payment_id": e.PaymentID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create enrollment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *enrollmentRepository) ListByAccount(ctx context.Context, accountID string) ([]*enrollment.Enrollment, error) {
	cursor, err := r.store.Collection(types.CollectionEnrollments).
		Find(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list enrollments").
			WithReportableDetails(map[string]any{"account_id": accountID}).
			Mark(ierr.ErrDatabase)
	}
	defer cursor.Close(ctx)

	var models []enrollmentModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode enrollments").
			Mark(ierr.ErrDatabase)
	}

	result := make([]*enrollment.Enrollment, 0, len(models))
	for i := range models {
		e, err := fromEnrollmentModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, nil
}
