// Package publish emits completed verdicts to Kafka for downstream reward
// issuance. Optional and best-effort: a failed publish never affects the
// run's outcome or exit code.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/finquarium/proof-of-contribution/internal/domain"
)

// Config holds Kafka connection configuration.
type Config struct {
	Brokers []string
	Topic   string
}

// VerdictPublisher emits verdict events.
type VerdictPublisher interface {
	Publish(ctx context.Context, v *domain.Verdict) error
	Close() error
}

// KafkaPublisher implements VerdictPublisher using Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a new Kafka verdict publisher.
func NewKafkaPublisher(cfg Config) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // same fingerprint lands on the same partition
		RequiredAcks: kafka.RequireAll,
	}
	return &KafkaPublisher{writer: writer}
}

var _ VerdictPublisher = (*KafkaPublisher)(nil)

// Publish sends the verdict keyed by account fingerprint.
func (p *KafkaPublisher) Publish(ctx context.Context, v *domain.Verdict) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal verdict: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(v.Attributes.AccountIDHash),
		Value: data,
		Time:  time.Now(),
	})
}

// Close flushes pending messages and releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
