package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/account-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one message. The offset is committed only after
// a nil return; an error means the same message is delivered again.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// GiveUpHandler takes a message that failed every allowed attempt. A nil
// return commits the offset; an error keeps the message in the retry loop.
type GiveUpHandler func(ctx context.Context, key, value []byte, cause error) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Close() error
}

// KafkaReader is the part of *kafka.Reader the consumer drives.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	defaultRetryDelay = time.Second
	maxRetryDelay     = 30 * time.Second
)

// KafkaConsumer reads one topic as a member of a consumer group. Messages
// are handled strictly in fetch order per partition: a failing message is
// retried with backoff and blocks the ones behind it until it succeeds or,
// once maxAttempts is reached, the give-up handler accepts it.
type KafkaConsumer struct {
	reader      KafkaReader
	topic       string
	groupID     string
	retryDelay  time.Duration
	maxAttempts int
	giveUp      GiveUpHandler
	logger      *slog.Logger
}

func NewKafkaConsumer(logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == kafka.LastOffset {
		startOffset = kafka.LastOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{cfg.Brokers},
		Topic:       cfg.FundingTopic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: startOffset,
	})
	c := NewKafkaConsumerWithReader(logger, reader, cfg.FundingTopic, cfg.ConsumerGroup)
	c.maxAttempts = cfg.MaxDeliveryAttempts
	return c
}

func NewKafkaConsumerWithReader(logger *slog.Logger, reader KafkaReader, topic, groupID string) *KafkaConsumer {
	return &KafkaConsumer{
		reader:     reader,
		topic:      topic,
		groupID:    groupID,
		retryDelay: defaultRetryDelay,
		logger:     logger.With("topic", topic, "group_id", groupID),
	}
}

// OnGiveUp installs the handler for messages that exhausted maxAttempts.
// Without one, failing messages are retried forever.
func (c *KafkaConsumer) OnGiveUp(fn GiveUpHandler) {
	c.giveUp = fn
}

// Subscribe starts Run in the background.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	if c.reader == nil {
		return errors.New("kafka reader is not initialized")
	}
	c.logger.Info("Subscribed to Kafka topic")
	go c.Run(ctx, handler)
	return nil
}

// Run consumes until ctx is cancelled.
func (c *KafkaConsumer) Run(ctx context.Context, handler MessageHandler) {
	defer c.logger.Info("Kafka consumer stopped")

	for ctx.Err() == nil {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Error("Failed to fetch message from Kafka", "error", err)
				c.sleep(ctx, c.retryDelay)
			}
			continue
		}

		if !c.deliver(ctx, handler, msg) {
			return
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("Failed to commit offset", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		}
	}
}

// deliver calls handler until it succeeds or the give-up handler takes the
// message. It reports false when ctx ends first, leaving the message
// uncommitted for the next group member.
func (c *KafkaConsumer) deliver(ctx context.Context, handler MessageHandler, msg kafka.Message) bool {
	log := c.logger.With("partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))
	delay := c.retryDelay

	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg.Key, msg.Value)
		if err == nil {
			if attempt > 1 {
				log.Info("Message handled after retry", "attempts", attempt)
			}
			return true
		}

		if c.exhausted(attempt) && ctx.Err() == nil {
			giveUpErr := c.giveUp(ctx, msg.Key, msg.Value, err)
			if giveUpErr == nil {
				log.Error("Message abandoned after exhausting attempts", "attempts", attempt, "error", err)
				return true
			}
			log.Error("Give-up handler failed, still retrying", "attempts", attempt, "error", giveUpErr)
		}

		log.Warn("Message handling failed, retrying", "attempt", attempt, "retry_in", delay, "error", err)
		if !c.sleep(ctx, delay) {
			return false
		}
		delay = min(delay*2, maxRetryDelay)
	}
}

func (c *KafkaConsumer) exhausted(attempt int) bool {
	return c.giveUp != nil && c.maxAttempts > 0 && attempt >= c.maxAttempts
}

func (c *KafkaConsumer) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
