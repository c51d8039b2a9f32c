package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := New(Config{DefaultTTL: time.Minute})
	defer c.Close()

	c.Set(ctx, "a", 1)
	value, found := c.Get(ctx, "a")
	require.True(t, found)
	require.Equal(t, 1, value)

	_, found = c.Get(ctx, "missing")
	require.False(t, found)
}

func TestCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c := New(Config{})
	defer c.Close()

	c.SetWithTTL(ctx, "a", 1, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, found := c.Get(ctx, "a")
	require.False(t, found)
}

func TestCacheDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c := New(Config{})
	defer c.Close()

	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)

	c.Delete(ctx, "a")
	_, found := c.Get(ctx, "a")
	require.False(t, found)
	require.Equal(t, int64(1), c.Size())

	c.Clear(ctx)
	require.Equal(t, int64(0), c.Size())
}

func TestCacheMaxItems(t *testing.T) {
	ctx := context.Background()
	c := New(Config{MaxItems: 3})
	defer c.Close()

	for _, key := range []string{"a", "b", "c", "d", "e"} {
		c.Set(ctx, key, key)
	}

	require.LessOrEqual(t, c.Size(), int64(3))

	// The most recently written key survives overflow eviction.
	_, found := c.Get(ctx, "e")
	require.True(t, found)
}

func TestCacheOnEviction(t *testing.T) {
	ctx := context.Background()
	evicted := map[string]any{}
	c := New(Config{OnEviction: func(key string, value any) {
		evicted[key] = value
	}})
	defer c.Close()

	c.Set(ctx, "a", 1)
	c.Delete(ctx, "a")

	require.Equal(t, map[string]any{"a": 1}, evicted)
}

func TestCacheValuesSkipsExpired(t *testing.T) {
	ctx := context.Background()
	c := New(Config{})
	defer c.Close()

	c.Set(ctx, "fresh", 1)
	c.SetWithTTL(ctx, "stale", 2, time.Nanosecond)
	time.Sleep(time.Millisecond)

	values := c.Values()
	require.Equal(t, []any{1}, values)
}

func TestCacheSetOverwrite(t *testing.T) {
	ctx := context.Background()
	c := New(Config{})
	defer c.Close()

	c.Set(ctx, "a", 1)
	c.Set(ctx, "a", 2)

	value, found := c.Get(ctx, "a")
	require.True(t, found)
	require.Equal(t, 2, value)
	require.Equal(t, int64(1), c.Size())
}
