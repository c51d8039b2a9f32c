package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Tiered combines the in-memory L1 with an optional redis L2. Values live in
// L1 as-is; the L2 holds encoded payloads produced by the configured codec.
// Without an L2 the tiered cache degenerates to the plain memory cache.
type Tiered struct {
	l1     *Cache
	l2     *RedisCache
	encode func(value any) ([]byte, error)
	decode func(payload []byte) (any, error)
}

// TieredConfig configures a tiered cache.
type TieredConfig struct {
	L1     Config
	L2     *RedisCache // nil disables the second tier
	Encode func(value any) ([]byte, error)
	Decode func(payload []byte) (any, error)
}

// NewTiered creates a tiered cache. Encode/Decode are required only when an
// L2 is present.
func NewTiered(config TieredConfig) *Tiered {
	return &Tiered{
		l1:     New(config.L1),
		l2:     config.L2,
		encode: config.Encode,
		decode: config.Decode,
	}
}

// Get checks L1, then L2. An L2 hit is promoted into L1.
func (t *Tiered) Get(ctx context.Context, key string) (any, bool) {
	if value, found := t.l1.Get(ctx, key); found {
		return value, true
	}
	if t.l2 != nil && t.decode != nil {
		if payload, found := t.l2.Get(ctx, key); found {
			value, err := t.decode(payload)
			if err != nil {
				t.l2.Delete(ctx, key)
				return nil, false
			}
			t.l1.Set(ctx, key, value)
			return value, true
		}
	}
	return nil, false
}

// Set stores value in both tiers.
func (t *Tiered) Set(ctx context.Context, key string, value any) {
	t.l1.Set(ctx, key, value)
	if t.l2 != nil && t.encode != nil {
		if payload, err := t.encode(value); err == nil {
			t.l2.Set(ctx, key, payload)
		}
	}
}

// SetWithTTL stores value in both tiers with an explicit TTL.
func (t *Tiered) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) {
	t.l1.SetWithTTL(ctx, key, value, ttl)
	if t.l2 != nil && t.encode != nil {
		if payload, err := t.encode(value); err == nil {
			t.l2.SetWithTTL(ctx, key, payload, ttl)
		}
	}
}

// Delete removes key from both tiers.
func (t *Tiered) Delete(ctx context.Context, key string) {
	t.l1.Delete(ctx, key)
	if t.l2 != nil {
		t.l2.Delete(ctx, key)
	}
}

// Clear removes every entry from both tiers.
func (t *Tiered) Clear(ctx context.Context) {
	t.l1.Clear(ctx)
	if t.l2 != nil {
		t.l2.Clear(ctx)
	}
}

// Close stops the L1 cleaner and releases the L2 client.
func (t *Tiered) Close() error {
	if t.l2 != nil {
		if err := t.l2.Close(); err != nil {
			_ = t.l1.Close()
			return err
		}
	}
	return t.l1.Close()
}

// GenerateKey builds a deterministic cache key from components, suffixed with
// a short hash so unbounded component values stay within key length limits.
func GenerateKey(components ...string) string {
	key := strings.Join(components, ":")
	h := sha256.Sum256([]byte(key))
	return key + ":" + hex.EncodeToString(h[:])[:16]
}
