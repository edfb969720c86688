// Package sequence allocates per-tenant, per-year membership number sequences.
package sequence

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	id "github.com/dr-roshyara/public-digit-sub005/pkg/domain"
	"github.com/dr-roshyara/public-digit-sub005/pkg/platform/sentinel"
)

const keyPrefix = "membership:seq:"

// Key returns the Redis key for a tenant's sequence in the given year.
func Key(tenantID id.TenantID, year int) string {
	return fmt.Sprintf("%s%s:%04d", keyPrefix, tenantID, year)
}

// advanceScript raises a counter to ARGV[1] and never lowers it.
var advanceScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local floor = tonumber(ARGV[1])
if current < floor then
	redis.call("SET", KEYS[1], floor)
	return floor
end
return current
`)

// RedisSequence hands out numbers with INCR, so allocation is atomic across
// every process sharing the Redis instance.
type RedisSequence struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisSequence {
	return &RedisSequence{client: client}
}

// Next returns the next number, starting at 1.
func (s *RedisSequence) Next(ctx context.Context, tenantID id.TenantID, year int) (int64, error) {
	if tenantID.IsZero() {
		return 0, sentinel.ErrMissingTenant
	}
	n, err := s.client.Incr(ctx, Key(tenantID, year)).Result()
	if err != nil {
		return 0, fmt.Errorf("increment membership sequence: %w: %w", sentinel.ErrUnavailable, err)
	}
	return n, nil
}

// Advance makes the next number at least floor+1. A counter that is
// already past floor is left alone.
func (s *RedisSequence) Advance(ctx context.Context, tenantID id.TenantID, year int, floor int64) error {
	if tenantID.IsZero() {
		return sentinel.ErrMissingTenant
	}
	if err := advanceScript.Run(ctx, s.client, []string{Key(tenantID, year)}, floor).Err(); err != nil {
		return fmt.Errorf("advance membership sequence: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// InMemory is a process-local sequence for tests and single-node development.
type InMemory struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewInMemory() *InMemory {
	return &InMemory{counters: make(map[string]int64)}
}

func (s *InMemory) Next(_ context.Context, tenantID id.TenantID, year int) (int64, error) {
	if tenantID.IsZero() {
		return 0, sentinel.ErrMissingTenant
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := Key(tenantID, year)
	s.counters[key]++
	return s.counters[key], nil
}

func (s *InMemory) Advance(_ context.Context, tenantID id.TenantID, year int, floor int64) error {
	if tenantID.IsZero() {
		return sentinel.ErrMissingTenant
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := Key(tenantID, year)
	s.counters[key] = max(s.counters[key], floor)
	return nil
}
