package service

import (
	"context"
	"sync"
	"time"

	dErrors "github.com/dr-roshyara/public-digit-sub005/pkg/domain-errors"
)

// StoreTx provides the atomic boundary for a load-mutate-save plus its outbox
// append. Implementations may wrap a database transaction or, in memory, a lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// numMemberShards spreads in-memory transactions over independent locks keyed
// by tenant, so tenants never wait on each other.
const numMemberShards = 64

// defaultTxTimeout bounds a transaction when the caller set no deadline.
const defaultTxTimeout = 5 * time.Second

// shardedMemberTx serializes work per tenant shard. It does not roll back, so
// it is only paired with the in-memory store and outbox, whose writes after
// validation cannot fail.
type shardedMemberTx struct {
	shards  [numMemberShards]sync.Mutex
	timeout time.Duration
}

func newInMemoryStoreTx() *shardedMemberTx {
	return &shardedMemberTx{}
}

func (t *shardedMemberTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := t.selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

func (t *shardedMemberTx) selectShard(ctx context.Context) int {
	if key, ok := ctx.Value(txShardKeyCtx).(string); ok && key != "" {
		return int(hashShardKey(key) % numMemberShards)
	}
	return 0
}

// hashShardKey is FNV-1a.
func hashShardKey(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

type txShardKey struct{}

var txShardKeyCtx = txShardKey{}

// withShardKey tags ctx with the tenant whose shard a transaction should lock.
func withShardKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, txShardKeyCtx, key)
}
