package geography

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
)

// Cache remembers references already confirmed by the directory. Every key is
// tenant-scoped; a hit for one tenant never answers another.
type Cache interface {
	Contains(ctx context.Context, tenantID id.TenantID, path string) (bool, error)
	Put(ctx context.Context, tenantID id.TenantID, path string) error
}

func cacheKey(tenantID id.TenantID, path string) string {
	return "geo:" + tenantID.String() + ":" + path
}

// RedisCache stores confirmed references with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Contains(ctx context.Context, tenantID id.TenantID, path string) (bool, error) {
	err := c.client.Get(ctx, cacheKey(tenantID, path)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read geography cache: %w", err)
	}
	return true, nil
}

func (c *RedisCache) Put(ctx context.Context, tenantID id.TenantID, path string) error {
	if err := c.client.Set(ctx, cacheKey(tenantID, path), "1", c.ttl).Err(); err != nil {
		return fmt.Errorf("write geography cache: %w", err)
	}
	return nil
}

// MemoryCache is an in-process TTL cache.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now, entries: make(map[string]time.Time)}
}

func (c *MemoryCache) Contains(_ context.Context, tenantID id.TenantID, path string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(tenantID, path)
	expires, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if !c.now().Before(expires) {
		delete(c.entries, key)
		return false, nil
	}
	return true, nil
}

func (c *MemoryCache) Put(_ context.Context, tenantID id.TenantID, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(tenantID, path)] = c.now().Add(c.ttl)
	return nil
}
