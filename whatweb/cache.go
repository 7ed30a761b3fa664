package whatweb

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// cacheSize bounds both process-wide caches.
const cacheSize = 100

// memoCache is a bounded compute-once cache. The LRU holds the most recent
// results for the life of the process; singleflight collapses concurrent
// misses on the same key into a single computation. Errors are never
// cached, so a failed fetch can be retried by a later caller.
type memoCache[V any] struct {
	lru   *lru.Cache[string, V]
	group singleflight.Group
}

func newMemoCache[V any]() *memoCache[V] {
	cache, _ := lru.New[string, V](cacheSize)
	return &memoCache[V]{lru: cache}
}

// Do returns the cached value for key, or runs compute and caches its
// result. Concurrent callers for the same key share one computation.
func (c *memoCache[V]) Do(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.lru.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Len reports the number of cached entries.
func (c *memoCache[V]) Len() int {
	return c.lru.Len()
}
