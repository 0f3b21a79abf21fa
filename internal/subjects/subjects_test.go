package subjects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carecompliance/pkg/platform/sentinel"
)

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory(
		Subject{ID: "r2", Location: "Beta"},
		Subject{ID: "r1", Location: "Alpha"},
	)

	all, err := store.List(ctx, true, nil)
	require.NoError(t, err)
	assert.Equal(t, []Subject{{ID: "r1", Location: "Alpha"}, {ID: "r2", Location: "Beta"}}, all)

	scoped, err := store.List(ctx, false, []string{"Beta"})
	require.NoError(t, err)
	assert.Equal(t, []Subject{{ID: "r2", Location: "Beta"}}, scoped)

	none, err := store.List(ctx, false, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
