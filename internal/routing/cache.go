package routing

import (
	"fmt"
	"maps"
	"strconv"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is used when a cache is created with a non-positive size.
const DefaultCacheSize = 1024

// ResolveCache memoizes resolution results per table version. Keys include the
// table version, so results computed against an older snapshot are never
// returned for a newer one.
type ResolveCache struct {
	cache  *lru.Cache[string, Match]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewResolveCache creates a bounded cache holding at most size results.
func NewResolveCache(size int) (*ResolveCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, Match](size)
	if err != nil {
		return nil, fmt.Errorf("create resolve cache: %w", err)
	}
	return &ResolveCache{cache: c}, nil
}

// Resolve returns the cached match for path on table, computing it on a miss.
// The second return value reports whether the result came from the cache.
// Every call returns its own Params map.
func (c *ResolveCache) Resolve(table *Table, path string) (Match, bool) {
	if c == nil {
		return Resolve(table, path), false
	}

	key := cacheKey(table.Version(), path)
	if m, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		m.Params = maps.Clone(m.Params)
		return m, true
	}

	c.misses.Add(1)
	m := Resolve(table, path)
	c.cache.Add(key, m)
	m.Params = maps.Clone(m.Params)
	return m, false
}

// Purge drops every cached result.
func (c *ResolveCache) Purge() {
	if c == nil {
		return
	}
	c.cache.Purge()
}

// Len returns the number of cached results.
func (c *ResolveCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}

// Stats returns the hit and miss counters.
func (c *ResolveCache) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

func cacheKey(version uint64, path string) string {
	return strconv.FormatUint(version, 10) + "\x00" + path
}
