// Package notification consumes storefront events from Kafka and turns
// confirmed orders into customer messages.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/event"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
	pkgkafka "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/kafka"
)

// ConsumerGroupID is the Kafka consumer group for the notifier.
const ConsumerGroupID = "storefront-notifications"

// dedupTTL bounds how long processed event IDs are remembered.
const dedupTTL = 24 * time.Hour

// Message is a rendered customer notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a rendered message.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of a mail gateway.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Name returns the sender name.
func (s *LogSender) Name() string { return "log" }

// Send logs the message.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "notification sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}

// Handler routes broker events to the sender.
type Handler struct {
	sender Sender
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(sender Sender, logger *slog.Logger) *Handler {
	return &Handler{sender: sender, logger: logger}
}

// Handle processes one event. Unknown event types are ignored.
func (h *Handler) Handle(ctx context.Context, evt *pkgkafka.Event) error {
	switch evt.EventType {
	case event.TopicOrderCreated:
		return h.handleOrderCreated(ctx, evt)
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", evt.EventType),
			slog.String("event_id", evt.EventID),
		)
		return nil
	}
}

func (h *Handler) handleOrderCreated(ctx context.Context, evt *pkgkafka.Event) error {
	var data event.OrderCreatedData
	if err := evt.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode order.created %s: %w", evt.EventID, err)
	}
	if data.Email == "" {
		h.logger.WarnContext(ctx, "order.created without email, skipping",
			slog.String("order_id", data.OrderID),
		)
		return nil
	}

	if err := h.sender.Send(ctx, OrderConfirmation(data)); err != nil {
		return apperrors.Wrap(err, "send order confirmation")
	}
	h.logger.InfoContext(ctx, "order confirmation delivered",
		slog.String("order_id", data.OrderID),
		slog.Int("number", data.Number),
		slog.String("sender", h.sender.Name()),
	)
	return nil
}

// OrderConfirmation renders the message sent when an order is paid.
func OrderConfirmation(data event.OrderCreatedData) Message {
	var b strings.Builder
	name := data.CustomerName
	if name == "" {
		name = "cliente"
	}
	fmt.Fprintf(&b, "Hola %s, recibimos el pago de tu pedido #%d.\n\n", name, data.Number)
	for _, it := range data.Items {
		fmt.Fprintf(&b, "- %s x%d: %s\n", it.Name, it.Quantity, domain.FormatCLP(it.LineTotal()))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", domain.FormatCLP(data.Subtotal))
	if data.Discount > 0 {
		fmt.Fprintf(&b, "Descuento: -%s\n", domain.FormatCLP(data.Discount))
	}
	fmt.Fprintf(&b, "Total: %s\n", domain.FormatCLP(data.Total))

	return Message{
		To:      data.Email,
		Subject: fmt.Sprintf("Pedido #%d confirmado", data.Number),
		Body:    b.String(),
	}
}

// DedupStore returns the store that remembers sent confirmations: Redis
// when rdb is set so every instance shares it, process memory otherwise.
func DedupStore(rdb redis.Cmdable) pkgkafka.IdempotencyStore {
	if rdb == nil {
		return pkgkafka.NewMemoryIdempotencyStore(dedupTTL)
	}
	return pkgkafka.NewRedisIdempotencyStore(rdb, ConsumerGroupID, dedupTTL)
}

// NewConsumers creates one consumer per subscribed topic, deduplicated
// through dedup. Messages that keep failing go to dlq when it is non-nil.
func NewConsumers(brokers []string, h *Handler, dedup pkgkafka.IdempotencyStore, dlq pkgkafka.DeadLetterPublisher, logger *slog.Logger) []*pkgkafka.Consumer {
	topics := []string{event.TopicOrderCreated}
	handle := pkgkafka.IdempotentHandler(dedup, h.Handle, logger)

	consumers := make([]*pkgkafka.Consumer, 0, len(topics))
	for _, topic := range topics {
		cfg := pkgkafka.ConsumerConfig{
			Brokers:  brokers,
			GroupID:  ConsumerGroupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
			DLQ:      dlq,
		}
		consumers = append(consumers, pkgkafka.NewConsumer(cfg, handle, logger))
	}
	return consumers
}
