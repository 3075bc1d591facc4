package users

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/dmitrijs2005/mediabox/internal/server/models"
)

// UserCache is the store shared by every CachedRepository. generation is
// bumped on each update; a lookup that saw an update start while it read the
// database does not write its row back.
type UserCache struct {
	*bigcache.BigCache
	generation atomic.Uint64
}

// NewUserCache builds the shared cache used by CachedRepository. Entries
// live for ttl.
func NewUserCache(ctx context.Context, ttl time.Duration) (*UserCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 64
	cfg.CleanWindow = ttl
	cfg.MaxEntriesInWindow = 10000
	cfg.MaxEntrySize = 512
	cfg.Verbose = false
	c, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &UserCache{BigCache: c}, nil
}

// CachedRepository serves FindByID from an in-memory cache. Every protected
// request resolves its user by id, so this is the hot path. Update evicts
// the entry; the remaining methods go straight to the wrapped repository.
//
// An update made inside a transaction evicts before it commits, so a lookup
// in that window can still cache the old row until the entry expires.
type CachedRepository struct {
	Repository
	cache *UserCache
}

func NewCachedRepository(inner Repository, cache *UserCache) *CachedRepository {
	return &CachedRepository{Repository: inner, cache: cache}
}

func (r *CachedRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	key := cacheKey(id)

	if b, err := r.cache.Get(key); err == nil {
		u := &models.User{}
		if json.Unmarshal(b, u) == nil {
			return u, nil
		}
	}

	gen := r.cache.generation.Load()
	u, err := r.Repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.cache.generation.Load() != gen {
		return u, nil
	}
	if b, err := json.Marshal(u); err == nil {
		_ = r.cache.Set(key, b)
	}
	return u, nil
}

func (r *CachedRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	r.cache.generation.Add(1)
	u, err := r.Repository.Update(ctx, user)
	// ErrEntryNotFound is the only expected error here
	_ = r.cache.Delete(cacheKey(user.ID))
	return u, err
}

func cacheKey(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}
