package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/cohortly/cohortly/internal/domain/cohort"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/types"
)

type cohortRepository struct {
	store *Store
}

// NewCohortRepository returns the MongoDB-backed cohort directory.
func NewCohortRepository(store *Store) cohort.Repository {
	return &cohortRepository{store: store}
}

func (r *cohortRepository) Get(ctx context.Context, id string) (*cohort.Cohort, error) {
	var m cohortModel
	err := r.store.Collection(types.CollectionCohorts).
		FindOne(ctx, bson.M{"_id": id}).
		Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ierr.NewError("cohort not found").
				WithHint("The referenced cohort does not exist").
				WithReportableDetails(map[string]any{"cohort_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch cohort").
			Mark(ierr.ErrDatabase)
	}
	return fromCohortModel(&m)
}

func (r *cohortRepository) AddToRoster(ctx context.Context, cohortID, accountID string) error {
	res, err := r.store.Collection(types.CollectionCohorts).
		UpdateOne(ctx,
			bson.M{"_id": cohortID},
			bson.M{
				"$addToSet": bson.M{"roster": accountID},
				"$set":      bson.M{"updated_at": now()},
			},
		)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update cohort roster").
			WithReportableDetails(map[string]any{
				"cohort_id":  cohortID,
				"account_id": accountID,
			}).
			Mark(ierr.ErrDatabase)
	}
	if res.MatchedCount == 0 {
		return ierr.NewError("cohort not found").
			WithHint("The referenced cohort does not exist").
			WithReportableDetails(map[string]any{"cohort_id": cohortID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
