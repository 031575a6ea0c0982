package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDLQTopic(t *testing.T) {
	assert.Equal(t, "storefront.dlq", DLQTopicPrefix)

	tests := []struct {
		name          string
		originalTopic string
		want          string
	}{
		{"standard topic", "storefront.order.created", "storefront.dlq.storefront.order.created"},
		{"simple topic name", "orders", "storefront.dlq.orders"},
		{"topic with hyphens", "cart-events", "storefront.dlq.cart-events"},
		{"empty topic", "", "storefront.dlq."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DLQTopic(tt.originalTopic))
		})
	}
}

type recordingDLQ struct {
	msgs   []kafka.Message
	errs   []error
	groups []string
	fail   error
}

func (r *recordingDLQ) Publish(_ context.Context, msg kafka.Message, lastErr error, group string) error {
	r.msgs = append(r.msgs, msg)
	r.errs = append(r.errs, lastErr)
	r.groups = append(r.groups, group)
	return r.fail
}

func newTestConsumer(h Handler, dlq DeadLetterPublisher) *Consumer {
	return &Consumer{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		handler: h,
		dlq:     dlq,
		groupID: "storefront-notifications",
		backoff: time.Millisecond,
	}
}

func TestConsumer_HandleWithRetry_RecoversOnLaterAttempt(t *testing.T) {
	calls := 0
	c := newTestConsumer(func(context.Context, *Event) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	}, nil)

	lastErr, canceled := c.handleWithRetry(context.Background(), kafka.Message{Topic: "t"}, &Event{EventID: "e1"})
	assert.NoError(t, lastErr)
	assert.False(t, canceled)
	assert.Equal(t, 2, calls)
}

func TestConsumer_HandleWithRetry_ExhaustsRetries(t *testing.T) {
	calls := 0
	c := newTestConsumer(func(context.Context, *Event) error {
		calls++
		return errors.New("always broken")
	}, nil)

	lastErr, canceled := c.handleWithRetry(context.Background(), kafka.Message{Topic: "t"}, &Event{EventID: "e1"})
	require.Error(t, lastErr)
	assert.False(t, canceled)
	assert.Equal(t, maxHandlerRetries, calls)
}

func TestConsumer_HandleWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := newTestConsumer(func(context.Context, *Event) error {
		cancel()
		return errors.New("broken")
	}, nil)
	c.backoff = time.Hour

	lastErr, canceled := c.handleWithRetry(ctx, kafka.Message{Topic: "t"}, &Event{})
	assert.Error(t, lastErr)
	assert.True(t, canceled)
}

func TestConsumer_DeadLetter(t *testing.T) {
	dlq := &recordingDLQ{}
	c := newTestConsumer(nil, dlq)
	msg := kafka.Message{Topic: "storefront.order.created", Offset: 7, Value: []byte(`{}`)}

	c.deadLetter(context.Background(), msg, errors.New("boom"))

	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, msg.Topic, dlq.msgs[0].Topic)
	assert.EqualError(t, dlq.errs[0], "boom")
	assert.Equal(t, "storefront-notifications", dlq.groups[0])
}

func TestConsumer_DeadLetterFailureAndNoDLQ(t *testing.T) {
	failing := &recordingDLQ{fail: errors.New("dlq down")}
	newTestConsumer(nil, failing).deadLetter(context.Background(), kafka.Message{}, errors.New("x"))
	assert.Len(t, failing.msgs, 1)

	assert.NotPanics(t, func() {
		newTestConsumer(nil, nil).deadLetter(context.Background(), kafka.Message{}, errors.New("x"))
	})
}

func TestDeadLetterMessage(t *testing.T) {
	msg := kafka.Message{
		Topic:     "storefront.order.created",
		Partition: 2,
		Offset:    41,
		Key:       []byte("o-1"),
		Value:     []byte(`{"event_type":"storefront.order.created"}`),
		Headers:   []kafka.Header{{Key: HeaderEventType, Value: []byte("storefront.order.created")}},
	}

	parked := deadLetterMessage(msg, errors.New("smtp down"), "storefront-notifications")

	assert.Equal(t, "storefront.dlq.storefront.order.created", parked.Topic)
	assert.Equal(t, msg.Key, parked.Key)
	assert.Equal(t, msg.Value, parked.Value)
	carrier := headerCarrier{headers: &parked.Headers}
	assert.Equal(t, "storefront.order.created", carrier.Get(HeaderEventType))
	assert.Equal(t, "storefront.order.created", carrier.Get(HeaderDLQTopic))
	assert.Equal(t, "2", carrier.Get(HeaderDLQPartition))
	assert.Equal(t, "41", carrier.Get(HeaderDLQOffset))
	assert.Equal(t, "storefront-notifications", carrier.Get(HeaderDLQGroup))
	assert.Equal(t, "smtp down", carrier.Get(HeaderDLQError))
	assert.Len(t, msg.Headers, 1, "original headers untouched")
}

func TestConsumer_Process(t *testing.T) {
	valid := []byte(`{"event_id":"e1","event_type":"storefront.order.created","data":{}}`)

	t.Run("malformed is committed without handling", func(t *testing.T) {
		called := false
		c := newTestConsumer(func(context.Context, *Event) error { called = true; return nil }, nil)
		assert.True(t, c.process(context.Background(), kafka.Message{Value: []byte("garbage")}))
		assert.False(t, called)
	})

	t.Run("poison message is dead-lettered", func(t *testing.T) {
		dlq := &recordingDLQ{}
		c := newTestConsumer(func(context.Context, *Event) error { return errors.New("boom") }, dlq)
		assert.True(t, c.process(context.Background(), kafka.Message{Value: valid}))
		assert.Len(t, dlq.msgs, 1)
	})

	t.Run("cancel leaves message uncommitted", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		c := newTestConsumer(func(context.Context, *Event) error { cancel(); return errors.New("boom") }, nil)
		c.backoff = time.Hour
		assert.False(t, c.process(ctx, kafka.Message{Value: valid}))
	})
}
