package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/cohortly/cohortly/internal/domain/plan"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/types"
)

type planRepository struct {
	store *Store
}

// NewPlanRepository returns the MongoDB-backed plan directory.
func NewPlanRepository(store *Store) plan.Repository {
	return &planRepository{store: store}
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	var m planModel
	err := r.store.Collection(types.CollectionPlans).
		FindOne(ctx, bson.M{"_id": id}).
		Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ierr.NewError("plan not found").
				WithHint("The referenced plan does not exist").
				WithReportableDetails(map[string]any{"plan_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch plan").
			Mark(ierr.ErrDatabase)
	}
	return fromPlanModel(&m)
}

func (r *planRepository) Update(ctx context.Context, p *plan.Plan) error {
	p.UpdatedAt = now()
	m := toPlanModel(p)

	res, err := r.store.Collection(types.CollectionPlans).
		ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update plan").
			WithReportableDetails(map[string]any{"plan_id": p.ID}).
			Mark(ierr.ErrDatabase)
	}
	if res.MatchedCount == 0 {
		return ierr.NewError("plan not found").
			WithHint("The referenced plan does not exist").
			WithReportableDetails(map[string]any{"plan_id": p.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
