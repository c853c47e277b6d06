package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestSetGet(t *testing.T) {
	c := New(Config{})
	c.Set(BucketFarms, "farms:list:a", payload{Name: "x", Value: 1.5})

	var got payload
	require.True(t, c.Get(BucketFarms, "farms:list:a", &got))
	assert.Equal(t, payload{Name: "x", Value: 1.5}, got)

	assert.False(t, c.Get(BucketFarms, "farms:list:missing", &got))
	assert.False(t, c.Get(BucketHistory, "farms:list:a", &got), "buckets are independent")
	assert.False(t, c.Get(Bucket("unknown"), "k", &got))
}

func TestInvalidateGlob(t *testing.T) {
	c := New(Config{})
	c.Set(BucketFarms, "farms:list:1", 1)
	c.Set(BucketFarms, "farms:list:2", 2)
	c.Set(BucketFarms, "farms:detail:a", 3)
	c.Set(BucketHistory, "history:a:30", 4)

	assert.Equal(t, 2, c.Invalidate(BucketFarms, "farms:list:*"))
	assert.Equal(t, 1, c.Len(BucketFarms))
	assert.Equal(t, 1, c.Invalidate(BucketFarms, "*"))
	assert.Equal(t, 1, c.Len(BucketHistory))

	c.Purge()
	assert.Equal(t, 0, c.Len(BucketHistory))
}

func TestExpiry(t *testing.T) {
	c := New(Config{TTLs: map[Bucket]time.Duration{BucketFarms: 20 * time.Millisecond}})
	c.Set(BucketFarms, "k", "v")

	var got string
	require.True(t, c.Get(BucketFarms, "k", &got))
	time.Sleep(60 * time.Millisecond)
	assert.False(t, c.Get(BucketFarms, "k", &got))
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	c.Set(BucketFarms, "k", "v")

	var got string
	assert.False(t, c.Get(BucketFarms, "k", &got))
	assert.Equal(t, 0, c.Invalidate(BucketFarms, "*"))
	assert.Equal(t, 0, c.Len(BucketFarms))
	c.Purge()
}

func TestSizeBound(t *testing.T) {
	c := New(Config{Size: 2})
	c.Set(BucketChains, "a", 1)
	c.Set(BucketChains, "b", 2)
	c.Set(BucketChains, "c", 3)

	assert.Equal(t, 2, c.Len(BucketChains))
	var v int
	assert.False(t, c.Get(BucketChains, "a", &v))
}
