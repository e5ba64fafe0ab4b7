package parser

import (
	"golang.org/x/sync/singleflight"

	"github.com/corelogio/corelog/internal/cache"
)

// Cache is a bounded template-plan cache owned by a single Logger instance
// (setTemplateCacheSize is a per-logger call, not process-global). A zero or
// negative size disables caching: every call parses fresh and nothing is
// stored, but still renders correctly.
type Cache struct {
	lru   *cache.LRUCache
	group singleflight.Group
}

// NewCache builds a cache with the given capacity. Size <= 0 disables it.
func NewCache(size int) *Cache {
	if size <= 0 {
		return &Cache{}
	}
	return &Cache{lru: cache.NewLRUCache(size)}
}

// Parse returns the cached plan for template, parsing and storing it on a
// miss. Safe for concurrent use. Concurrent misses for the same template
// collapse into a single Parse call via singleflight, rather than every
// caller racing to parse and store the identical plan.
func (c *Cache) Parse(template string) *TemplatePlan {
	if c == nil || c.lru == nil {
		return Parse(template)
	}
	if v, ok := c.lru.Get(template); ok {
		return v.(*TemplatePlan)
	}
	v, _, _ := c.group.Do(template, func() (interface{}, error) {
		if v, ok := c.lru.Get(template); ok {
			return v.(*TemplatePlan), nil
		}
		plan := Parse(template)
		c.lru.Put(template, plan, 0)
		return plan, nil
	})
	return v.(*TemplatePlan)
}

// Stats reports cache hit/miss/eviction counters; a disabled cache reports
// zero values.
func (c *Cache) Stats() cache.CacheStats {
	if c == nil || c.lru == nil {
		return cache.CacheStats{}
	}
	return c.lru.Stats()
}
