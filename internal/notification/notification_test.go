package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/event"
	pkgkafka "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/kafka"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/logger"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Name() string { return "mock" }

func (m *mockSender) Send(ctx context.Context, msg Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func orderData() event.OrderCreatedData {
	return event.OrderCreatedData{
		OrderID:       "o-1",
		Number:        1001,
		TransactionID: "tx-1",
		Email:         "ana@example.com",
		CustomerName:  "Ana",
		Items: []domain.OrderItem{
			{ProductID: "1", Name: "Vela de soya", Price: 12990, Quantity: 2},
		},
		Subtotal: 25980,
		Discount: 2598,
		Total:    23382,
	}
}

func newTestEvent(t *testing.T, eventType string, data any) *pkgkafka.Event {
	t.Helper()
	evt, err := pkgkafka.NewEvent(eventType, "o-1", event.AggregateTypeOrder, event.SourceStorefront, data)
	require.NoError(t, err)
	return evt
}

func TestOrderConfirmation(t *testing.T) {
	msg := OrderConfirmation(orderData())

	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Pedido #1001 confirmado", msg.Subject)
	assert.Contains(t, msg.Body, "Hola Ana")
	assert.Contains(t, msg.Body, "Vela de soya x2")
	assert.Contains(t, msg.Body, "Descuento:")

	data := orderData()
	data.Discount = 0
	data.CustomerName = ""
	msg = OrderConfirmation(data)
	assert.NotContains(t, msg.Body, "Descuento:")
	assert.Contains(t, msg.Body, "Hola cliente")
}

func TestHandler_OrderCreatedSendsConfirmation(t *testing.T) {
	sender := new(mockSender)
	h := NewHandler(sender, logger.Discard())

	sender.On("Send", mock.Anything, mock.MatchedBy(func(m Message) bool {
		return m.To == "ana@example.com" && m.Subject == "Pedido #1001 confirmado"
	})).Return(nil).Once()

	require.NoError(t, h.Handle(context.Background(), newTestEvent(t, event.TopicOrderCreated, orderData())))
	sender.AssertExpectations(t)
}

func TestHandler_SenderErrorIsReturned(t *testing.T) {
	sender := new(mockSender)
	h := NewHandler(sender, logger.Discard())
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	err := h.Handle(context.Background(), newTestEvent(t, event.TopicOrderCreated, orderData()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
}

func TestHandler_SkipsWithoutEmailAndUnknownTypes(t *testing.T) {
	sender := new(mockSender)
	h := NewHandler(sender, logger.Discard())

	data := orderData()
	data.Email = ""
	assert.NoError(t, h.Handle(context.Background(), newTestEvent(t, event.TopicOrderCreated, data)))
	assert.NoError(t, h.Handle(context.Background(), newTestEvent(t, event.TopicCartUpdated, event.CartUpdated{})))

	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHandler_MalformedPayload(t *testing.T) {
	h := NewHandler(new(mockSender), logger.Discard())
	evt := &pkgkafka.Event{
		EventID:   "evt-1",
		EventType: event.TopicOrderCreated,
		Timestamp: time.Now().UTC(),
		Data:      json.RawMessage(`"not an object"`),
	}
	assert.Error(t, h.Handle(context.Background(), evt))
}

func TestHandler_DeduplicatedThroughIdempotentHandler(t *testing.T) {
	sender := new(mockSender)
	h := NewHandler(sender, logger.Discard())
	sender.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	handle := pkgkafka.IdempotentHandler(pkgkafka.NewMemoryIdempotencyStore(dedupTTL), h.Handle, logger.Discard())
	evt := newTestEvent(t, event.TopicOrderCreated, orderData())

	require.NoError(t, handle(context.Background(), evt))
	require.NoError(t, handle(context.Background(), evt))
	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestLogSender(t *testing.T) {
	s := NewLogSender(logger.Discard())
	assert.Equal(t, "log", s.Name())
	assert.NoError(t, s.Send(context.Background(), Message{To: "a@b.cl", Subject: "x"}))
}

func TestNewConsumers(t *testing.T) {
	h := NewHandler(NewLogSender(logger.Discard()), logger.Discard())
	consumers := NewConsumers([]string{"localhost:9092"}, h, DedupStore(nil), nil, logger.Discard())
	require.Len(t, consumers, 1)
	for _, c := range consumers {
		assert.NoError(t, c.Close())
	}
}

func TestDedupStore(t *testing.T) {
	assert.IsType(t, &pkgkafka.MemoryIdempotencyStore{}, DedupStore(nil))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := DedupStore(rdb)
	require.NoError(t, store.Add(context.Background(), "evt-1"))
	assert.True(t, mr.Exists(ConsumerGroupID+":evt-1"))
}
