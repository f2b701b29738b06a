package coc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCachePutGet(t *testing.T) {
	cache := NewCache[int](time.Hour)

	_, ok := cache.Get("a")
	assert.False(t, ok)

	cache.Put("a", 1)
	value, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, value)

	cache.Delete("a")
	_, ok = cache.Get("a")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache[string](time.Millisecond)
	cache.Put("a", "fresh")

	time.Sleep(5 * time.Millisecond)

	_, ok := cache.Get("a")
	assert.False(t, ok, "entry past its TTL")
	assert.Zero(t, cache.Len(), "expired entry is removed on read")
}

func TestCacheKeysAndClear(t *testing.T) {
	cache := NewCache[int](time.Hour)
	cache.Put("a", 1)
	cache.Put("b", 2)

	assert.ElementsMatch(t, []string{"a", "b"}, cache.Keys())
	assert.Equal(t, 2, cache.Len())

	cache.Clear()
	assert.Empty(t, cache.Keys())
	assert.Zero(t, cache.Len())
}
