package producers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/account-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// ErrDLQDisabled is returned when publishing through a producer without a writer
var ErrDLQDisabled = errors.New("DLQ producer not initialized")

// DLQProducer parks rejected funding requests on the DLQ topic
type DLQProducer struct {
	logger      *slog.Logger
	writer      KafkaWriter
	dlqTopic    string
	sourceTopic string
}

// NewDLQProducer returns a nil producer when cfg.DLQTopic is empty (DLQ disabled)
func NewDLQProducer(logger *slog.Logger, cfg *config.KafkaConfig) (*DLQProducer, error) {
	if cfg.DLQTopic == "" {
		logger.Info("DLQ topic is not configured. DLQProducer will not be initialized.")
		return nil, nil
	}

	if err := dialAndEnsureTopic(cfg.Brokers, cfg.DLQTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure DLQ topic %s exists: %w", cfg.DLQTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.DLQTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	producer := NewDLQProducerWithWriter(logger, writer, cfg.DLQTopic)
	producer.sourceTopic = cfg.FundingTopic
	return producer, nil
}

// NewDLQProducerWithWriter creates a DLQ producer over an existing writer
func NewDLQProducerWithWriter(logger *slog.Logger, writer KafkaWriter, dlqTopic string) *DLQProducer {
	return &DLQProducer{
		logger:   logger,
		writer:   writer,
		dlqTopic: dlqTopic,
	}
}

// DLQMessage is the envelope written to the DLQ topic. The original value is
// kept verbatim so the request can be replayed after repair.
type DLQMessage struct {
	OriginalKey   string    `json:"original_key"`
	OriginalValue string    `json:"original_value"`
	Kind          string    `json:"kind"`
	Reason        string    `json:"reason"`
	SourceTopic   string    `json:"source_topic,omitempty"`
	FailedAt      time.Time `json:"failed_at"`
}

// PublishToDLQ writes letter under its original key, so all rejections for
// one account land on the same partition
func (p *DLQProducer) PublishToDLQ(ctx context.Context, letter DeadLetter) error {
	if p == nil || p.writer == nil {
		return ErrDLQDisabled
	}

	value, err := json.Marshal(DLQMessage{
		OriginalKey:   string(letter.Key),
		OriginalValue: string(letter.Value),
		Kind:          letter.Kind,
		Reason:        letter.Reason,
		SourceTopic:   p.sourceTopic,
		FailedAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	msg := kafka.Message{
		Key:   letter.Key,
		Value: value,
		Headers: []kafka.Header{
			{Key: "dlq-kind", Value: []byte(letter.Kind)},
			{Key: "dlq-reason", Value: []byte(letter.Reason)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message to DLQ",
			"topic", p.dlqTopic,
			"key", string(letter.Key),
			"kind", letter.Kind,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to DLQ %s: %w", p.dlqTopic, err)
	}

	p.logger.Warn("Parked message on DLQ",
		"topic", p.dlqTopic,
		"key", string(letter.Key),
		"kind", letter.Kind,
		"reason", letter.Reason,
	)
	return nil
}

func (p *DLQProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	p.logger.Info("Closing DLQ Kafka message producer", "topic", p.dlqTopic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close dlq kafka writer for topic %s: %w", p.dlqTopic, err)
	}
	return nil
}
