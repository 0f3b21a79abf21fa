package main

import (
	"context"
	"log/slog"
	"time"

	"carecompliance/internal/platform/config"
	"carecompliance/pkg/platform/audit"
	auditpublisher "carecompliance/pkg/platform/audit/publisher"
	auditkafka "carecompliance/pkg/platform/audit/store/kafka"
	auditmemory "carecompliance/pkg/platform/audit/store/memory"
	auditpostgres "carecompliance/pkg/platform/audit/store/postgres"
)

const auditFlushTimeout = 5 * time.Second

// newAuditPublisher picks the audit sink: Kafka when brokers are set, the
// audit_records table when a database is configured, memory otherwise.
// The returned func drains the buffer and closes the sink.
func newAuditPublisher(ctx context.Context, cfg *config.Config, log *slog.Logger) (*auditpublisher.Publisher, func(), error) {
	var (
		sink      audit.Sink
		closeSink func()
	)

	switch brokers := cfg.Kafka.BrokerList(); {
	case len(brokers) > 0:
		client, err := auditkafka.NewClient(brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return nil, nil, err
		}
		if err := auditkafka.EnsureTopic(ctx, client, cfg.Kafka.AuditTopic, cfg.Kafka.AuditPartitions, cfg.Kafka.ReplicationFactor); err != nil {
			client.Close()
			return nil, nil, err
		}
		ks := auditkafka.New(client, cfg.Kafka.AuditTopic, log)
		sink = ks
		closeSink = func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), auditFlushTimeout)
			defer cancel()
			if err := ks.Close(flushCtx); err != nil {
				log.Warn("audit kafka flush failed", "error", err)
			}
		}
		log.InfoContext(ctx, "audit records stream to kafka", "topic", cfg.Kafka.AuditTopic)
	case cfg.Database.DSN != "":
		store, err := auditpostgres.Open(cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		sink = store
		closeSink = func() { _ = store.Close() }
	default:
		sink = auditmemory.NewInMemoryStore()
		closeSink = func() {}
	}

	pub := auditpublisher.NewPublisher(sink,
		auditpublisher.WithLogger(log),
		auditpublisher.WithMetrics(auditpublisher.NewMetrics()),
		auditpublisher.WithAsyncBuffer(cfg.Audit.BufferSize),
	)
	return pub, func() {
		if err := pub.Close(); err != nil {
			log.Warn("audit publisher close failed", "error", err)
		}
		closeSink()
	}, nil
}
