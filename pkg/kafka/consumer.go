// Package kafka carries chat events over segmentio/kafka-go: the producer
// writes JSON batches from the analytics collector and the consumer feeds
// the stats command.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/config"
)

// MessageHandler processes one message. A non-nil error leaves it uncommitted.
type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer reads the chat-event topic as a member of a consumer group and
// hands each message to a MessageHandler.
type Consumer struct {
	reader     *kafka.Reader
	handler    MessageHandler
	logger     *slog.Logger
	maxBackoff time.Duration
}

// NewConsumer creates a Consumer of cfg.Topic in cfg.ConsumerGroup. A new
// group starts from the oldest retained event.
func NewConsumer(cfg config.KafkaConfig, handler MessageHandler) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1,
		MaxBytes:    1 << 20,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.FirstOffset,
	})
	return &Consumer{
		reader:     r,
		handler:    handler,
		logger:     slog.Default().With("component", "kafka-consumer", "topic", cfg.Topic, "group", cfg.ConsumerGroup),
		maxBackoff: 5 * time.Second,
	}
}

// Run consumes until ctx is done and returns how many messages the handler
// accepted. Rejected messages are logged and left uncommitted. Fetch errors
// back off exponentially so an unreachable broker does not spin.
func (c *Consumer) Run(ctx context.Context) (int, error) {
	c.logger.Info("consuming chat events")
	handled := 0
	wait := 100 * time.Millisecond
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", "handled", handled, "reason", ctx.Err())
				return handled, nil
			}
			c.logger.Warn("fetch failed", "error", err, "retry_in", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return handled, nil
			}
			wait = min(wait*2, c.maxBackoff)
			continue
		}
		wait = 100 * time.Millisecond

		if err := c.handler(ctx, msg.Key, msg.Value); err != nil {
			c.logger.Error("event rejected",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
			continue
		}
		handled++
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed", "offset", msg.Offset, "error", err)
		}
	}
}

// Close closes the underlying Kafka reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
