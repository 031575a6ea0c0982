package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/segmentio/kafka-go"
)

// DLQTopicPrefix prefixes dead-letter topics: storefront.order.created is
// parked in storefront.dlq.storefront.order.created.
const DLQTopicPrefix = TopicPrefix + ".dlq"

// Headers added to a dead-lettered message.
const (
	HeaderDLQTopic     = "dlq.original_topic"
	HeaderDLQPartition = "dlq.original_partition"
	HeaderDLQOffset    = "dlq.original_offset"
	HeaderDLQGroup     = "dlq.consumer_group"
	HeaderDLQError     = "dlq.error"
)

// DLQTopic names the dead-letter topic for topic.
func DLQTopic(topic string) string {
	return DLQTopicPrefix + "." + topic
}

// DLQProducer parks messages no handler could process.
type DLQProducer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewDLQProducer creates a DLQProducer writing to brokers.
func NewDLQProducer(brokers []string, logger *slog.Logger) *DLQProducer {
	cfg := DefaultProducerConfig(brokers)
	return &DLQProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			BatchSize:              1,
			WriteTimeout:           cfg.WriteTimeout,
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// Publish copies msg to its dead-letter topic with provenance headers.
func (d *DLQProducer) Publish(ctx context.Context, msg kafka.Message, lastErr error, group string) error {
	parked := deadLetterMessage(msg, lastErr, group)
	if err := d.writer.WriteMessages(ctx, parked); err != nil {
		return fmt.Errorf("publish to %s: %w", parked.Topic, err)
	}
	deadLetteredTotal.WithLabelValues(msg.Topic, group).Inc()
	d.logger.WarnContext(ctx, "message dead-lettered",
		slog.String("dlq_topic", parked.Topic),
		slog.String("topic", msg.Topic),
		slog.Int64("offset", msg.Offset),
		slog.String("group", group),
	)
	return nil
}

func deadLetterMessage(msg kafka.Message, lastErr error, group string) kafka.Message {
	headers := append([]kafka.Header(nil), msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: HeaderDLQTopic, Value: []byte(msg.Topic)},
		kafka.Header{Key: HeaderDLQPartition, Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: HeaderDLQOffset, Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: HeaderDLQGroup, Value: []byte(group)},
	)
	if lastErr != nil {
		headers = append(headers, kafka.Header{Key: HeaderDLQError, Value: []byte(lastErr.Error())})
	}
	return kafka.Message{
		Topic:   DLQTopic(msg.Topic),
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
}

// Close flushes pending writes.
func (d *DLQProducer) Close() error {
	return d.writer.Close()
}
