package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_Allow(t *testing.T) {
	ctx := context.Background()
	limit := Limit{Requests: 2, Window: time.Minute}
	start := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	newStore := func() (*InMemoryStore, *time.Time) {
		now := start
		s := NewInMemoryStore()
		s.now = func() time.Time { return now }
		return s, &now
	}

	t.Run("allows up to the limit then rejects", func(t *testing.T) {
		s, _ := newStore()
		first, err := s.Allow(ctx, "10.0.0.1", limit)
		require.NoError(t, err)
		assert.True(t, first.Allowed)
		assert.Equal(t, 1, first.Remaining)

		second, err := s.Allow(ctx, "10.0.0.1", limit)
		require.NoError(t, err)
		assert.True(t, second.Allowed)
		assert.Equal(t, 0, second.Remaining)

		third, err := s.Allow(ctx, "10.0.0.1", limit)
		require.NoError(t, err)
		assert.False(t, third.Allowed)
		assert.Equal(t, 60, third.RetryAfter)
		assert.Equal(t, start.Add(time.Minute), third.ResetAt)
	})

	t.Run("keys are independent", func(t *testing.T) {
		s, _ := newStore()
		for range 2 {
			_, err := s.Allow(ctx, "a", limit)
			require.NoError(t, err)
		}
		res, err := s.Allow(ctx, "b", limit)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("window slides", func(t *testing.T) {
		s, now := newStore()
		_, _ = s.Allow(ctx, "k", limit)
		*now = start.Add(30 * time.Second)
		_, _ = s.Allow(ctx, "k", limit)

		*now = start.Add(61 * time.Second)
		res, err := s.Allow(ctx, "k", limit)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "first hit has left the window")

		res, err = s.Allow(ctx, "k", limit)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 29, res.RetryAfter)
	})
}
