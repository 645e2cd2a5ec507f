// Package publisher feeds recorded threats to a Kafka topic so downstream
// consumers (SIEM pipelines, partner nodes) can react without polling the
// ledger.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	contractModel "payshield/internal/contract/models"
)

// Publisher emits threat records to an external feed.
type Publisher interface {
	Publish(ctx context.Context, threat contractModel.Threat) error
	Close()
}

// Noop discards all publishes. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, contractModel.Threat) error { return nil }
func (Noop) Close()                                              {}

// Kafka publishes threats as JSON, keyed by vendor hash so all reports for
// one vendor land in the same partition.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka connects to the given brokers. The produced records are keyed by
// vendor hash; delivery is asynchronous with failures logged, not returned.
func NewKafka(brokers []string, topic string, logger *slog.Logger) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Kafka{client: client, topic: topic, logger: logger}, nil
}

func (k *Kafka) Publish(ctx context.Context, threat contractModel.Threat) error {
	payload, err := json.Marshal(threat)
	if err != nil {
		return fmt.Errorf("marshal threat: %w", err)
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(threat.VendorHash),
		Value: payload,
	}
	k.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			k.logger.Error("threat publish failed",
				"topic", k.topic,
				"threat_id", threat.ThreatID,
				"error", err,
			)
		}
	})
	return nil
}

func (k *Kafka) Close() {
	k.client.Close()
}
