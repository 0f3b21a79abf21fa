package publisher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	audit "carecompliance/pkg/platform/audit"
)

func TestRingBuffer_DropsOldest(t *testing.T) {
	b := newRingBuffer(2)

	assert.False(t, b.enqueue(audit.Record{RequestID: "1"}))
	assert.False(t, b.enqueue(audit.Record{RequestID: "2"}))
	assert.True(t, b.enqueue(audit.Record{RequestID: "3"}))

	batch := b.dequeueBatch(10)
	assert.Equal(t, []string{"2", "3"}, []string{batch[0].RequestID, batch[1].RequestID})
	assert.Equal(t, int64(1), b.droppedTotal())
	assert.Zero(t, b.len())
	assert.Nil(t, b.dequeueBatch(1))
}
