package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheItem wraps cached data with its expiry.
type cacheItem struct {
	data      interface{}
	expiresAt time.Time
}

// TTLCache is a small LRU cache with per-entry expiry, used for the scraped
// news feed and the hot ideas listing.
type TTLCache struct {
	lruCache *lru.Cache[string, cacheItem]
}

// NewTTLCache creates a cache holding at most size entries.
func NewTTLCache(size int) (*TTLCache, error) {
	l, err := lru.New[string, cacheItem](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache{lruCache: l}, nil
}

// Set stores data under key for ttl.
func (c *TTLCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, cacheItem{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	})
}

// Get returns the cached value, or nil when missing or expired.
func (c *TTLCache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		return nil
	}
	return val.data
}

// Delete drops a key.
func (c *TTLCache) Delete(key string) {
	c.lruCache.Remove(key)
}
