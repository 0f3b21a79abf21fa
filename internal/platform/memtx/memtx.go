// Package memtx serializes read-then-write sequences against in-memory stores.
//
// It stands in for a database transaction when no DSN is configured. Work is
// spread over sharded mutexes keyed by the aggregate being mutated (resident,
// location, link), so unrelated mutations do not contend.
package memtx

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	dErrors "carecompliance/pkg/domain-errors"
)

const (
	numShards      = 64
	defaultTimeout = 5 * time.Second
)

type (
	shardKeyCtx struct{}
	heldCtx     struct{}
)

// WithShardKey selects the shard the next RunInTx call locks.
func WithShardKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, shardKeyCtx{}, key)
}

// Sharded implements RunInTx with one mutex per shard.
type Sharded struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

func New() *Sharded {
	return &Sharded{timeout: defaultTimeout}
}

// RunInTx holds the shard lock for the duration of fn. Nested calls run fn
// directly under the lock already held.
func (t *Sharded) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(heldCtx{}) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shard := &t.shards[shardFor(ctx)]
	shard.Lock()
	defer shard.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(context.WithValue(ctx, heldCtx{}, true))
}

func shardFor(ctx context.Context) int {
	key, _ := ctx.Value(shardKeyCtx{}).(string)
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % numShards)
}
