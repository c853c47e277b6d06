// Package cache is a bucketed TTL cache for API responses. Each bucket is a
// bounded LRU whose entries expire after the bucket's TTL. A nil *Cache is a
// valid cache that never hits.
package cache

import (
	"encoding/json"
	"path"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Bucket names a group of keys sharing a TTL.
type Bucket string

const (
	BucketFarms     Bucket = "farms"
	BucketProtocols Bucket = "protocols"
	BucketChains    Bucket = "chains"
	BucketHistory   Bucket = "history"
)

// DefaultTTLs are the response lifetimes per bucket.
var DefaultTTLs = map[Bucket]time.Duration{
	BucketFarms:     time.Minute,
	BucketProtocols: time.Hour,
	BucketChains:    24 * time.Hour,
	BucketHistory:   5 * time.Minute,
}

const defaultSize = 1024

type Config struct {
	// Size bounds the number of entries per bucket.
	Size int
	// TTLs overrides DefaultTTLs for the given buckets.
	TTLs map[Bucket]time.Duration
}

type Cache struct {
	buckets map[Bucket]*expirable.LRU[string, []byte]
}

func New(cfg Config) *Cache {
	size := cfg.Size
	if size <= 0 {
		size = defaultSize
	}

	c := &Cache{buckets: make(map[Bucket]*expirable.LRU[string, []byte], len(DefaultTTLs))}
	for bucket, ttl := range DefaultTTLs {
		if override, ok := cfg.TTLs[bucket]; ok && override > 0 {
			ttl = override
		}
		c.buckets[bucket] = expirable.NewLRU[string, []byte](size, nil, ttl)
	}
	return c
}

// Get decodes the entry at key into dst and reports whether it was found.
func (c *Cache) Get(bucket Bucket, key string, dst any) bool {
	lru := c.bucket(bucket)
	if lru == nil {
		return false
	}
	raw, ok := lru.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		lru.Remove(key)
		return false
	}
	return true
}

// Set stores value at key. Values that fail to encode are not cached.
func (c *Cache) Set(bucket Bucket, key string, value any) {
	lru := c.bucket(bucket)
	if lru == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	lru.Add(key, raw)
}

// Invalidate removes keys of bucket matching the glob pattern (path.Match
// syntax) and returns how many were removed.
func (c *Cache) Invalidate(bucket Bucket, pattern string) int {
	lru := c.bucket(bucket)
	if lru == nil {
		return 0
	}
	var removed int
	for _, key := range lru.Keys() {
		if ok, err := path.Match(pattern, key); err == nil && ok {
			if lru.Remove(key) {
				removed++
			}
		}
	}
	return removed
}

// Purge empties every bucket.
func (c *Cache) Purge() {
	if c == nil {
		return
	}
	for _, lru := range c.buckets {
		lru.Purge()
	}
}

// Len is the number of live entries in bucket.
func (c *Cache) Len(bucket Bucket) int {
	lru := c.bucket(bucket)
	if lru == nil {
		return 0
	}
	return lru.Len()
}

func (c *Cache) bucket(b Bucket) *expirable.LRU[string, []byte] {
	if c == nil {
		return nil
	}
	return c.buckets[b]
}
