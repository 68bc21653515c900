package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/knowledgeweb/internal/model"
)

// MemoryCache implements in-memory TTL caching of query results.
// There is no size bound; entries expire by TTL only.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a result from the cache. Expired entries are treated
// as absent.
func (c *MemoryCache) Get(key string) (*model.QueryResult, bool) {
	if val, found := c.cache.Get(key); found {
		return val.(*model.QueryResult), true
	}
	return nil, false
}

// Set stores a result in the cache with the given TTL, overwriting any
// previous value for the key.
func (c *MemoryCache) Set(key string, value *model.QueryResult, ttl time.Duration) {
	c.cache.Set(key, value, ttl)
}

// Delete removes a result from the cache
func (c *MemoryCache) Delete(key string) {
	c.cache.Delete(key)
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}
