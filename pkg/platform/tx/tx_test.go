package tx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithTx_NilLeavesContextUntouched(t *testing.T) {
	ctx := WithTx(context.Background(), nil)
	_, ok := From(ctx)
	assert.False(t, ok)
	assert.Nil(t, QuerierFrom(ctx, nil))
}
