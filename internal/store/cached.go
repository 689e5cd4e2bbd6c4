package store

import (
	"context"
	"time"

	"github.com/zjrosen/featmodel/internal/cachemanager"
	"github.com/zjrosen/featmodel/internal/log"
)

// CachedRepository serves Load from a TTL cache and invalidates entries on
// Save and Delete. Other methods pass through.
type CachedRepository struct {
	Repository
	loads *cachemanager.ReadThroughCache[string, *Snapshot, string]
	ttl   time.Duration
}

// NewCachedRepository wraps repo. A disabled cache makes every Load hit repo.
func NewCachedRepository(repo Repository, cache cachemanager.CacheManager[string, *Snapshot], ttl time.Duration, disabled bool) *CachedRepository {
	return &CachedRepository{
		Repository: repo,
		loads:      cachemanager.NewReadThroughCache(cache, repo.Load, disabled),
		ttl:        ttl,
	}
}

func (c *CachedRepository) Load(ctx context.Context, name string) (*Snapshot, error) {
	return c.loads.Get(ctx, name, name, c.ttl)
}

func (c *CachedRepository) Save(ctx context.Context, s *Snapshot) error {
	if err := c.Repository.Save(ctx, s); err != nil {
		return err
	}
	c.invalidate(ctx, s.Name)
	return nil
}

func (c *CachedRepository) Delete(ctx context.Context, name string) error {
	if err := c.Repository.Delete(ctx, name); err != nil {
		return err
	}
	c.invalidate(ctx, name)
	return nil
}

func (c *CachedRepository) invalidate(ctx context.Context, name string) {
	if err := c.loads.Invalidate(ctx, name); err != nil {
		log.ErrorErr(log.CatCache, "invalidate failed", err, "model", name)
	}
}

var _ Repository = (*CachedRepository)(nil)
