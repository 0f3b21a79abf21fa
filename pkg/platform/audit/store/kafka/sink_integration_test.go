//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "carecompliance/pkg/platform/audit"
	auditkafka "carecompliance/pkg/platform/audit/store/kafka"
)

func TestSink_DeliversToBroker(t *testing.T) {
	ctx := context.Background()
	container, err := redpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.2.4")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	broker, err := container.KafkaSeedBroker(ctx)
	require.NoError(t, err)

	const topic = "compliance.audit.it"
	client, err := auditkafka.NewClient([]string{broker}, topic)
	require.NoError(t, err)
	require.NoError(t, auditkafka.EnsureTopic(ctx, client, topic, 1, 1))
	require.NoError(t, auditkafka.EnsureTopic(ctx, client, topic, 1, 1), "existing topic is accepted")

	sink := auditkafka.New(client, topic, nil)
	require.NoError(t, sink.Append(ctx, audit.Record{
		ActorID:   "sup-1",
		Event:     audit.EventISPActivated,
		Timestamp: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
		Location:  "Alpha",
	}))
	flushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, sink.Close(flushCtx))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	pollCtx, cancelPoll := context.WithTimeout(ctx, 20*time.Second)
	defer cancelPoll()
	fetches := consumer.PollFetches(pollCtx)
	require.Empty(t, fetches.Errors())

	var got []map[string]any
	fetches.EachRecord(func(r *kgo.Record) {
		var m map[string]any
		require.NoError(t, json.Unmarshal(r.Value, &m))
		assert.Equal(t, "Alpha", string(r.Key))
		got = append(got, m)
	})
	require.Len(t, got, 1)
	assert.Equal(t, string(audit.EventISPActivated), got[0]["event"])
}
