package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/cohortly/cohortly/internal/domain/account"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/types"
)

type accountRepository struct {
	store *Store
}

// NewAccountRepository returns the MongoDB-backed account directory.
func NewAccountRepository(store *Store) account.Repository {
	return &accountRepository{store: store}
}

func (r *accountRepository) Get(ctx context.Context, id string) (*account.Account, error) {
	var m accountModel
	err := r.store.Collection(types.CollectionAccounts).
		FindOne(ctx, bson.M{"_id": id}).
		Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ierr.NewError("account not found").
				WithHint("The referenced account does not exist").
				WithReportableDetails(map[string]any{"account_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch account").
			Mark(ierr.ErrDatabase)
	}
	return fromAccountModel(&m), nil
}

func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	a.UpdatedAt = now()
	m := toAccountModel(a)

	res, err := r.store.Collection(types.CollectionAccounts).
		ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update account").
			WithReportableDetails(map[string]any{"account_id": a.ID}).
			Mark(ierr.ErrDatabase)
	}
	if res.MatchedCount == 0 {
		return ierr.NewError("account not found").
			WithHint("The referenced account does not exist").
			WithReportableDetails(map[string]any{"account_id": a.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *accountRepository) ExpireOverdue(ctx context.Context, at time.Time) (int64, error) {
	res, err := r.store.Collection(types.CollectionAccounts).
		UpdateMany(ctx,
			bson.M{
				"subscription.active":    true,
				"subscription.expiry_at": bson.M{"$lte": at},
			},
			bson.M{
				"$set": bson.M{
					"subscription.active":  false,
					"subscription.expired": true,
					"updated_at":           now(),
				},
			},
		)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to expire overdue subscriptions").
			Mark(ierr.ErrDatabase)
	}
	return res.ModifiedCount, nil
}
