package account

import (
	"context"
	"time"

	"github.com/cohortly/cohortly/internal/cache"
	"github.com/cohortly/cohortly/internal/logger"
)

const cacheKeyPrefix = "account:"

// cachedRepository decorates a Repository with a read-through cache.
// Invalidation is co-located with every mutating write so entitlement reads
// never serve state older than the last reconciliation.
type cachedRepository struct {
	inner Repository
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedRepository wraps inner with the given cache.
func NewCachedRepository(inner Repository, c cache.Cache, ttl time.Duration, log *logger.Logger) Repository {
	return &cachedRepository{inner: inner, cache: c, ttl: ttl, log: log}
}

func cacheKey(id string) string {
	return cacheKeyPrefix + id
}

// clone keeps cached accounts isolated from callers. The engine mutates the
// account it reads before writes that can abort; handing out the cached
// pointer would let those mutations survive a rolled-back transaction.
func clone(a *Account) *Account {
	if a == nil {
		return nil
	}
	copied := *a
	copied.EnrolledCohorts = append([]string(nil), a.EnrolledCohorts...)
	return &copied
}

func (r *cachedRepository) Get(ctx context.Context, id string) (*Account, error) {
	if v, ok := r.cache.Get(ctx, cacheKey(id)); ok {
		if a, ok := v.(*Account); ok {
			return clone(a), nil
		}
	}

	a, err := r.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, cacheKey(id), clone(a), r.ttl)
	return a, nil
}

func (r *cachedRepository) Update(ctx context.Context, a *Account) error {
	err := r.inner.Update(ctx, a)
	// Invalidate whether or not the write succeeded: a failure can abort an
	// enclosing transaction whose earlier writes already touched this account.
	r.cache.Delete(ctx, cacheKey(a.ID))
	return err
}

func (r *cachedRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	n, err := r.inner.ExpireOverdue(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		// The sweep touches an unknown set of accounts; drop everything
		// rather than serving stale active flags.
		r.cache.Flush(ctx)
	}
	return n, nil
}
