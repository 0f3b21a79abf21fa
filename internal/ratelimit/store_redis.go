package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "carecompliance:ratelimit:"

// RedisStore shares windows across instances. Each key is a sorted set of
// request timestamps scored in milliseconds.
type RedisStore struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	now := s.now()
	nowMs := now.UnixMilli()
	cutoff := now.Add(-limit.Window).UnixMilli()
	k := keyPrefix + key

	var card *redis.IntCmd
	var oldest *redis.ZSliceCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, k, "-inf", strconv.FormatInt(cutoff, 10))
		card = p.ZCard(ctx, k)
		oldest = p.ZRangeWithScores(ctx, k, 0, 0)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ratelimit: read window: %w", err)
	}

	count := int(card.Val())
	if count >= limit.Requests {
		resetAt := now.Add(limit.Window)
		if z := oldest.Val(); len(z) > 0 {
			resetAt = time.UnixMilli(int64(z[0].Score)).Add(limit.Window)
		}
		return &Result{
			Allowed:    false,
			Limit:      limit.Requests,
			ResetAt:    resetAt,
			RetryAfter: retryAfterSeconds(resetAt, now),
		}, nil
	}

	// Members are unique so concurrent hits in the same millisecond all count.
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, k, redis.Z{Score: float64(nowMs), Member: uuid.NewString()})
		p.PExpire(ctx, k, limit.Window)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ratelimit: record hit: %w", err)
	}

	resetAt := now.Add(limit.Window)
	if z := oldest.Val(); len(z) > 0 {
		resetAt = time.UnixMilli(int64(z[0].Score)).Add(limit.Window)
	}
	return &Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - count - 1,
		ResetAt:   resetAt,
	}, nil
}
