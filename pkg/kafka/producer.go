package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/resilience"
)

// Producer publishes JSON-encoded values to one topic. Writes are
// synchronous and retried with backoff.
type Producer struct {
	writer *kafka.Writer
	retry  resilience.RetryConfig
	logger *slog.Logger
}

func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            1,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Producer{
		writer: w,
		retry:  resilience.DefaultRetryConfig(),
		logger: slog.Default().With("component", "kafka-producer", "topic", topic),
	}
}

// Publish writes value under key.
func (p *Producer) Publish(ctx context.Context, key string, value any) error {
	msg, err := encodeMessage(key, value)
	if err != nil {
		return err
	}
	err = resilience.Retry(ctx, "kafka-publish", p.retry, func(ctx context.Context) error {
		return p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		p.logger.Error("failed to publish message", "key", key, "error", err)
		return fmt.Errorf("publishing to %s: %w", p.writer.Topic, err)
	}
	p.logger.Debug("message published", "key", key, "value_size", len(msg.Value))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func encodeMessage(key string, value any) (kafka.Message, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshaling message value: %w", err)
	}
	return kafka.Message{Key: []byte(key), Value: data}, nil
}
