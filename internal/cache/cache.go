package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/cohortly/cohortly/internal/config"
	"github.com/cohortly/cohortly/internal/logger"
)

// Cache is the process-local cache injected into read paths. Writers must
// call Delete with the same key next to every mutating store write; there is
// no implicit invalidation.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Flush(ctx context.Context)
}

type inMemoryCache struct {
	store *gocache.Cache
}

// NewInMemoryCache creates a cache backed by patrickmn/go-cache.
func NewInMemoryCache(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing in-memory cache",
		"ttl", cfg.Cache.TTL,
		"cleanup_interval", cfg.Cache.CleanupInterval)

	return &inMemoryCache{
		store: gocache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval),
	}
}

func (c *inMemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *inMemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

func (c *inMemoryCache) Delete(_ context.Context, key string) {
	c.store.Delete(key)
}

func (c *inMemoryCache) Flush(_ context.Context) {
	c.store.Flush()
}
