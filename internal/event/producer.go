package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	pkgkafka "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/kafka"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/logger"
)

// Broker topics for storefront events.
const (
	TopicCartUpdated     = "storefront.cart.updated"
	TopicWishlistUpdated = "storefront.wishlist.updated"
	TopicOrderCreated    = "storefront.order.created"
)

// Aggregate types.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
	AggregateTypeOrder    = "order"
)

// SourceStorefront identifies events originating from this module.
const SourceStorefront = "storefront"

// Publisher sends an envelope to a topic. *pkgkafka.Producer and
// *RabbitPublisher both satisfy it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	OrderID       string             `json:"order_id"`
	Number        int                `json:"number"`
	TransactionID string             `json:"transaction_id"`
	UserID        string             `json:"user_id,omitempty"`
	Email         string             `json:"email"`
	CustomerName  string             `json:"customer_name"`
	Items         []domain.OrderItem `json:"items"`
	Subtotal      int64              `json:"subtotal"`
	Discount      int64              `json:"discount"`
	Total         int64              `json:"total"`
}

// Producer publishes storefront events. A Producer with a nil Publisher
// drops everything, which is how the server runs with EVENT_BROKER=none.
type Producer struct {
	pub    Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(pub Publisher, logger *slog.Logger) *Producer {
	return &Producer{pub: pub, logger: logger}
}

// Enabled reports whether events reach a broker.
func (p *Producer) Enabled() bool {
	return p != nil && p.pub != nil
}

// PublishCartUpdated publishes a cart.updated event for owner.
func (p *Producer) PublishCartUpdated(ctx context.Context, owner string, e CartUpdated) error {
	return p.publish(ctx, TopicCartUpdated, owner, AggregateTypeCart, e)
}

// PublishWishlistUpdated publishes a wishlist.updated event for owner.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, owner string, e WishlistUpdated) error {
	return p.publish(ctx, TopicWishlistUpdated, owner, AggregateTypeWishlist, e)
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		OrderID:       order.ID,
		Number:        order.Number,
		TransactionID: order.TransactionID,
		UserID:        order.UserID,
		Email:         order.Customer.Email,
		CustomerName:  order.Customer.Name,
		Items:         order.Items,
		Subtotal:      order.Subtotal,
		Discount:      order.Discount,
		Total:         order.Total,
	}
	return p.publish(ctx, TopicOrderCreated, order.ID, AggregateTypeOrder, data)
}

// CartSubscriber returns a cart handler that mirrors snapshots to the broker.
// Publish failures are logged and never reach the store.
func (p *Producer) CartSubscriber(owner string) Handler[CartUpdated] {
	return func(ctx context.Context, e CartUpdated) {
		if err := p.PublishCartUpdated(ctx, owner, e); err != nil {
			p.logger.ErrorContext(ctx, "failed to publish cart.updated event",
				slog.String("owner", owner),
				slog.String("error", err.Error()),
			)
		}
	}
}

// WishlistSubscriber is the wishlist counterpart of CartSubscriber.
func (p *Producer) WishlistSubscriber(owner string) Handler[WishlistUpdated] {
	return func(ctx context.Context, e WishlistUpdated) {
		if err := p.PublishWishlistUpdated(ctx, owner, e); err != nil {
			p.logger.ErrorContext(ctx, "failed to publish wishlist.updated event",
				slog.String("owner", owner),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	if !p.Enabled() {
		return nil
	}

	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.pub.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
