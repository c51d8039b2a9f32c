package cache

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rc := NewRedisCacheFromClient(client, nil)
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestRedisCacheSetGetDelete(t *testing.T) {
	ctx := context.Background()
	rc := newTestRedisCache(t)

	rc.Set(ctx, "k", []byte("payload"))
	data, found := rc.Get(ctx, "k")
	require.True(t, found)
	require.Equal(t, []byte("payload"), data)

	rc.Delete(ctx, "k")
	_, found = rc.Get(ctx, "k")
	require.False(t, found)
}

func TestRedisCacheClearOnlyTouchesPrefix(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rc := NewRedisCacheFromClient(client, nil)
	t.Cleanup(func() { _ = rc.Close() })

	rc.Set(ctx, "a", []byte("1"))
	rc.Set(ctx, "b", []byte("2"))
	require.NoError(t, mr.Set("unrelated", "keep"))

	rc.Clear(ctx)

	_, found := rc.Get(ctx, "a")
	require.False(t, found)
	_, found = rc.Get(ctx, "b")
	require.False(t, found)
	require.True(t, mr.Exists("unrelated"))
}

func TestTieredPromotesFromL2(t *testing.T) {
	ctx := context.Background()
	rc := newTestRedisCache(t)

	type page struct {
		Total int `json:"total"`
	}

	tc := NewTiered(TieredConfig{
		L2:     rc,
		Encode: func(value any) ([]byte, error) { return json.Marshal(value) },
		Decode: func(payload []byte) (any, error) {
			var p page
			if err := json.Unmarshal(payload, &p); err != nil {
				return nil, err
			}
			return &p, nil
		},
	})

	tc.Set(ctx, "q", &page{Total: 7})

	// Drop the L1 entry; the next Get must come back from redis.
	tc.l1.Delete(ctx, "q")

	value, found := tc.Get(ctx, "q")
	require.True(t, found)
	require.Equal(t, &page{Total: 7}, value)

	// And the hit is promoted back into L1.
	_, found = tc.l1.Get(ctx, "q")
	require.True(t, found)
}

func TestTieredClear(t *testing.T) {
	ctx := context.Background()
	rc := newTestRedisCache(t)

	tc := NewTiered(TieredConfig{
		L2:     rc,
		Encode: func(value any) ([]byte, error) { return json.Marshal(value) },
		Decode: func(payload []byte) (any, error) { return payload, nil },
	})

	tc.Set(ctx, "q", "v")
	tc.Clear(ctx)

	_, found := tc.Get(ctx, "q")
	require.False(t, found)
}
