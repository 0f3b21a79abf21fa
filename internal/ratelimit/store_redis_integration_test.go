//go:build integration

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carecompliance/internal/ratelimit"
	"carecompliance/pkg/testutil/containers"
)

func TestRedisStore_Allow(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	rc.FlushAll(t)

	store := ratelimit.NewRedisStore(rc.Client)
	limit := ratelimit.Limit{Requests: 2, Window: time.Minute}

	for i := range 2 {
		res, err := store.Allow(ctx, "198.51.100.7", limit)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 1-i, res.Remaining)
	}

	res, err := store.Allow(ctx, "198.51.100.7", limit)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Positive(t, res.RetryAfter)

	other, err := store.Allow(ctx, "198.51.100.8", limit)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}
