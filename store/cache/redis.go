package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisCache is an optional shared L2 for query results. It stores opaque
// byte payloads; encoding is the caller's concern. It is only needed when
// several instances should share cached pages or survive restarts.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisCacheConfig holds the redis connection configuration.
type RedisCacheConfig struct {
	Addr       string
	Password   string
	DB         int
	KeyPrefix  string
	DefaultTTL time.Duration
}

// DefaultRedisConfig returns the default redis configuration.
func DefaultRedisConfig() *RedisCacheConfig {
	return &RedisCacheConfig{
		Addr:       "localhost:6379",
		KeyPrefix:  "event-planning:",
		DefaultTTL: 30 * time.Minute,
	}
}

// NewRedisCache connects to redis and verifies the connection.
func NewRedisCache(ctx context.Context, config *RedisCacheConfig) (*RedisCache, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "failed to ping redis at %s", config.Addr)
	}
	return newRedisCache(client, config), nil
}

// NewRedisCacheFromClient wraps an existing client. Used by tests with
// miniredis.
func NewRedisCacheFromClient(client *redis.Client, config *RedisCacheConfig) *RedisCache {
	if config == nil {
		config = DefaultRedisConfig()
	}
	return newRedisCache(client, config)
}

func newRedisCache(client *redis.Client, config *RedisCacheConfig) *RedisCache {
	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = DefaultRedisConfig().KeyPrefix
	}
	return &RedisCache{
		client:    client,
		keyPrefix: prefix,
		ttl:       config.DefaultTTL,
	}
}

func (r *RedisCache) key(key string) string {
	return r.keyPrefix + key
}

// Get returns the payload for key. A connection error is treated as a miss.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores payload under key with the default TTL. Errors are ignored: the
// L2 is best-effort and the L1 remains authoritative.
func (r *RedisCache) Set(ctx context.Context, key string, payload []byte) {
	r.SetWithTTL(ctx, key, payload, r.ttl)
}

// SetWithTTL stores payload under key with an explicit TTL.
func (r *RedisCache) SetWithTTL(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	_ = r.client.Set(ctx, r.key(key), payload, ttl).Err()
}

// Delete removes key.
func (r *RedisCache) Delete(ctx context.Context, key string) {
	_ = r.client.Del(ctx, r.key(key)).Err()
}

// Clear removes every key under the cache's prefix.
func (r *RedisCache) Clear(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		_ = r.client.Del(ctx, iter.Val()).Err()
	}
}

// Close releases the underlying client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
