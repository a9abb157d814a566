package account

import (
	"context"
	"time"
)

// Repository is the account directory consumed by the reconciliation engine
// and the entitlement read side.
type Repository interface {
	Get(ctx context.Context, id string) (*Account, error)

	// Update persists the entitlement fields (plan assignment, subscription
	// metadata, enrolled cohorts) of an existing account.
	Update(ctx context.Context, a *Account) error

	// ExpireOverdue flips active subscriptions whose expiry has passed to
	// inactive/expired and returns the number of accounts touched.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}
