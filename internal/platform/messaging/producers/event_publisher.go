package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/account-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// EventPublisher writes account events to the events topic. Writes are
// synchronous so that a nil error means the brokers acknowledged the event.
type EventPublisher struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewEventPublisher creates an account event publisher and ensures its topic exists
func NewEventPublisher(logger *slog.Logger, cfg *config.KafkaConfig) (*EventPublisher, error) {
	if cfg.EventsTopic == "" {
		return nil, fmt.Errorf("kafka events topic is not configured")
	}

	if err := dialAndEnsureTopic(cfg.Brokers, cfg.EventsTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure events topic %s exists: %w", cfg.EventsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.EventsTopic,
		Balancer:     &kafka.Hash{}, // per-account ordering
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return NewEventPublisherWithWriter(logger, writer, cfg.EventsTopic), nil
}

// NewEventPublisherWithWriter creates an event publisher over an existing writer
func NewEventPublisherWithWriter(logger *slog.Logger, writer KafkaWriter, topic string) *EventPublisher {
	return &EventPublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

const contentTypeJSON = "application/json"

// Publish writes value as JSON under key. Events for one account share a
// key and therefore a partition, which keeps them in order.
func (p *EventPublisher) Publish(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   payload,
		Headers: []kafka.Header{{Key: "content-type", Value: []byte(contentTypeJSON)}},
	})
	if err != nil {
		p.logger.Error("Failed to publish event", "topic", p.topic, "key", key, "error", err)
		return fmt.Errorf("failed to publish event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published event", "topic", p.topic, "key", key, "bytes", len(payload))
	return nil
}

func (p *EventPublisher) Close() error {
	p.logger.Info("Closing Kafka event publisher", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
