package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/huangsam/assetload/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStoreBound(t *testing.T) {
	c := NewCacheStore(schema.DefaultMaxEntries)
	for i := range 200 {
		c.Put(fmt.Sprintf("https://x/%d.jpg", i%73), "v")
		assert.LessOrEqual(t, c.Stats().Size, schema.DefaultMaxEntries)
	}
	assert.Equal(t, schema.DefaultMaxEntries, c.Stats().MaxSize)
}

func TestCacheStoreFIFOEviction(t *testing.T) {
	c := NewCacheStore(schema.DefaultMaxEntries)
	for i := range schema.DefaultMaxEntries + 1 {
		key := fmt.Sprintf("k%d", i)
		c.Put(key, key)
	}

	_, ok := c.Get("k0")
	assert.False(t, ok, "first-inserted key should be evicted")
	for i := 1; i <= schema.DefaultMaxEntries; i++ {
		_, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok)
	}
	assert.Equal(t, schema.DefaultMaxEntries, c.Stats().Size)
}

func TestCacheStoreAccessDoesNotProtect(t *testing.T) {
	c := NewCacheStore(2)
	c.Put("hot", "1")
	c.Put("cold", "2")
	for range 10 {
		_, _ = c.Get("hot")
	}
	c.Put("new", "3")

	_, ok := c.Get("hot")
	assert.False(t, ok)
	assert.Equal(t, []string{"cold", "new"}, c.Keys())
}

func TestCacheStoreReinsertion(t *testing.T) {
	t.Run("replaces value without growing", func(t *testing.T) {
		c := NewCacheStore(schema.DefaultMaxEntries)
		c.Put("k", "v1")
		c.Put("k", "v2")

		entry, ok := c.Get("k")
		require.True(t, ok)
		assert.Equal(t, "v2", entry.ResolvedURI)
		assert.Equal(t, 1, c.Stats().Size)
	})

	t.Run("moves key to newest position", func(t *testing.T) {
		c := NewCacheStore(3)
		c.Put("a", "a")
		c.Put("b", "b")
		c.Put("c", "c")
		c.Put("a", "a2")
		c.Put("d", "d")

		_, ok := c.Get("b")
		assert.False(t, ok)
		assert.Equal(t, []string{"c", "a", "d"}, c.Keys())
	})

	t.Run("insertion sequence increases", func(t *testing.T) {
		c := NewCacheStore(3)
		c.Put("a", "a")
		first, _ := c.Get("a")
		c.Put("a", "a")
		second, _ := c.Get("a")
		assert.Greater(t, second.InsertedAt, first.InsertedAt)
	})
}

func TestCacheStoreClear(t *testing.T) {
	c := NewCacheStore(5)
	c.Put("a", "a")
	c.Put("b", "b")
	c.Clear()

	assert.Equal(t, schema.CacheStats{Size: 0, MaxSize: 5}, c.Stats())
	assert.Empty(t, c.Keys())
	c.Put("c", "c")
	assert.Equal(t, 1, c.Stats().Size)
}

func TestNewCacheStoreDefaultCapacity(t *testing.T) {
	assert.Equal(t, schema.DefaultMaxEntries, NewCacheStore(0).Stats().MaxSize)
	assert.Equal(t, schema.DefaultMaxEntries, NewCacheStore(-3).Stats().MaxSize)
}

func TestCacheStoreConcurrentPuts(t *testing.T) {
	c := NewCacheStore(10)
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				c.Put(fmt.Sprintf("w%d-%d", w, i), "v")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, c.Stats().Size)
	assert.Len(t, c.Keys(), 10)
}
