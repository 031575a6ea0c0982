package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// maxHandlerRetries bounds how often one message is handed to the handler
// before it is dead-lettered and committed.
const maxHandlerRetries = 3

// Handler processes one event. A returned error triggers a retry.
type Handler func(ctx context.Context, event *Event) error

// DeadLetterPublisher parks a message whose handler kept failing.
type DeadLetterPublisher interface {
	Publish(ctx context.Context, msg kafka.Message, lastErr error, group string) error
}

// ConsumerConfig configures a group consumer for one topic.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int
	// DLQ is optional. Without it poison messages are logged and skipped.
	DLQ DeadLetterPublisher
}

// Consumer reads one topic as part of a consumer group and commits each
// message after it was handled, retried out or found malformed.
type Consumer struct {
	reader    *kafka.Reader
	handler   Handler
	dlq       DeadLetterPublisher
	topic     string
	groupID   string
	backoff   time.Duration
	logger    *slog.Logger
	closeOnce sync.Once
}

// NewConsumer creates a Consumer. Nothing is read until Start.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			GroupID:  cfg.GroupID,
			Topic:    cfg.Topic,
			MinBytes: cfg.MinBytes,
			MaxBytes: cfg.MaxBytes,
		}),
		handler: handler,
		dlq:     cfg.DLQ,
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
		backoff: 100 * time.Millisecond,
		logger:  logger.With(slog.String("topic", cfg.Topic), slog.String("group", cfg.GroupID)),
	}
}

// Start consumes until ctx is canceled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started")
	defer c.logger.Info("consumer stopped")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return c.Close()
			}
			c.logger.Error("fetch failed", slog.String("error", err.Error()))
			continue
		}
		if !c.process(ctx, msg) {
			return c.Close()
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed",
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

// process handles msg and reports whether it may be committed. It returns
// false only when ctx ended mid-retry, leaving the message for redelivery.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		consumedTotal.WithLabelValues(c.topic, c.groupID, outcomeMalformed).Inc()
		c.logger.Error("dropping malformed message",
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return true
	}

	ctx = extractTrace(ctx, msg)
	start := time.Now()
	lastErr, canceled := c.handleWithRetry(ctx, msg, event)
	handleSeconds.WithLabelValues(c.topic, c.groupID).Observe(time.Since(start).Seconds())
	if canceled {
		return false
	}
	if lastErr == nil {
		consumedTotal.WithLabelValues(c.topic, c.groupID, outcomeHandled).Inc()
		return true
	}

	consumedTotal.WithLabelValues(c.topic, c.groupID, outcomeFailed).Inc()
	c.logger.Error("giving up on message",
		slog.String("event_id", event.EventID),
		slog.String("event_type", event.EventType),
		slog.Int64("offset", msg.Offset),
		slog.String("error", lastErr.Error()),
	)
	c.deadLetter(ctx, msg, lastErr)
	return true
}

// handleWithRetry calls the handler up to maxHandlerRetries times, waiting
// attempt*backoff between calls.
func (c *Consumer) handleWithRetry(ctx context.Context, msg kafka.Message, event *Event) (lastErr error, canceled bool) {
	for attempt := 1; attempt <= maxHandlerRetries; attempt++ {
		if lastErr = c.handler(ctx, event); lastErr == nil {
			return nil, false
		}
		c.logger.Warn("handler failed",
			slog.String("event_id", event.EventID),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempt", attempt),
			slog.String("error", lastErr.Error()),
		)
		if attempt == maxHandlerRetries {
			break
		}
		select {
		case <-ctx.Done():
			return lastErr, true
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}
	return lastErr, false
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, lastErr error) {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.Publish(ctx, msg, lastErr, c.groupID); err != nil {
		c.logger.Error("dead-letter failed",
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
	}
}

// Close releases the reader. It is safe to call more than once.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}
