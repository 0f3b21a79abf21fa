package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "carecompliance/pkg/platform/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	flushed bool
	closed  bool
}

func (f *fakeProducer) Produce(_ context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	f.records = append(f.records, r)
	promise(r, nil)
}

func (f *fakeProducer) Flush(context.Context) error {
	f.flushed = true
	return nil
}

func (f *fakeProducer) Close() {
	f.closed = true
}

func TestSink_Append(t *testing.T) {
	producer := &fakeProducer{}
	sink := New(producer, "compliance.audit", nil)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	err := sink.Append(context.Background(), audit.Record{
		ActorID:   "sup-1",
		Event:     audit.EventISPActivated,
		Timestamp: at,
		Location:  "Alpha",
		Details:   map[string]string{"file_id": "f-1"},
	})
	require.NoError(t, err)
	require.Len(t, producer.records, 1)

	rec := producer.records[0]
	assert.Equal(t, "compliance.audit", rec.Topic)
	assert.Equal(t, []byte("Alpha"), rec.Key)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Value, &body))
	assert.Equal(t, "isp_activated", body["event"])
	assert.Equal(t, "2026-03-01T09:00:00Z", body["timestamp"])

	require.NoError(t, sink.Close(context.Background()))
	assert.True(t, producer.flushed)
	assert.True(t, producer.closed)
}
