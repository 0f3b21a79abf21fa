// Package kafka streams audit records to a Kafka topic for downstream
// retention and SIEM consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "carecompliance/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client the sink needs.
type Producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// Sink publishes records asynchronously. Delivery failures are logged by the
// produce callback; Append only fails when the record cannot be encoded.
type Sink struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

// payload is the JSON value published per record.
type payload struct {
	ActorID   string            `json:"actor_id,omitempty"`
	Event     string            `json:"event"`
	Timestamp string            `json:"timestamp"`
	DeviceID  string            `json:"device_id,omitempty"`
	Location  string            `json:"location,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// NewClient builds a franz-go client for brokers.
func NewClient(brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(50*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

func New(producer Producer, topic string, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{producer: producer, topic: topic, logger: logger}
}

// Append encodes the record and hands it to the producer. Records are keyed by
// location so one location's history stays ordered within a partition.
func (s *Sink) Append(ctx context.Context, record audit.Record) error {
	value, err := json.Marshal(payload{
		ActorID:   record.ActorID,
		Event:     string(record.Event),
		Timestamp: record.Timestamp.UTC().Format(time.RFC3339Nano),
		DeviceID:  record.DeviceID,
		Location:  record.Location,
		RequestID: record.RequestID,
		Details:   record.Details,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	s.producer.Produce(ctx, &kgo.Record{
		Topic: s.topic,
		Key:   []byte(record.Location),
		Value: value,
	}, func(r *kgo.Record, err error) {
		if err != nil {
			s.logger.Error("failed to deliver audit record",
				"request_id", record.RequestID,
				"event", record.Event,
				"topic", r.Topic,
				"error", err,
			)
		}
	})
	return nil
}

// Close flushes buffered records and closes the producer.
func (s *Sink) Close(ctx context.Context) error {
	err := s.producer.Flush(ctx)
	s.producer.Close()
	if err != nil {
		return fmt.Errorf("flush audit records: %w", err)
	}
	return nil
}
