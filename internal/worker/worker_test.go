package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront/internal/broker"
	"storefront/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	name      string
	err       error
	orders    []*models.OrderCreatedEvent
	checkouts []*models.CheckoutCompletedEvent
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) OrderCreated(_ context.Context, e *models.OrderCreatedEvent) error {
	s.orders = append(s.orders, e)
	return s.err
}

func (s *recordingSink) CheckoutCompleted(_ context.Context, e *models.CheckoutCompletedEvent) error {
	s.checkouts = append(s.checkouts, e)
	return s.err
}

// sliceSource replays a fixed set of messages and then stops
type sliceSource struct {
	msgs   []kafka.Message
	errs   []error
	closed bool
}

func (s *sliceSource) StartConsuming(ctx context.Context, handler broker.MessageHandler) error {
	for _, m := range s.msgs {
		s.errs = append(s.errs, handler(ctx, m))
	}
	return nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

func message(t *testing.T, event any) kafka.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: data}
}

func TestRelayForwardsEventsToEverySink(t *testing.T) {
	checkout := &models.CheckoutCompletedEvent{
		BaseEvent: models.BaseEvent{EventID: "1", EventType: models.EventTypeCheckoutCompleted},
		Buyer:     models.Buyer{Name: "Mona"},
		OrderIDs:  []int64{1, 2},
		ItemCount: 3,
		Total:     decimal.NewFromInt(780),
	}
	order := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{EventID: "2", EventType: models.EventTypeOrderCreated},
		OrderID:   9,
		Product:   "Tee",
		Amount:    1,
		Total:     decimal.NewFromInt(100),
	}

	src := &sliceSource{msgs: []kafka.Message{message(t, checkout), message(t, order)}}
	ok := &recordingSink{name: "ok"}
	broken := &recordingSink{name: "broken", err: errors.New("unreachable")}

	w := NewNotifyRelayWorker(src, time.Second, broken, ok)
	require.NoError(t, w.Start(context.Background()))

	for _, err := range src.errs {
		assert.NoError(t, err)
	}

	require.Len(t, ok.checkouts, 1)
	assert.Equal(t, []int64{1, 2}, ok.checkouts[0].OrderIDs)
	assert.True(t, decimal.NewFromInt(780).Equal(ok.checkouts[0].Total))
	require.Len(t, ok.orders, 1)
	assert.EqualValues(t, 9, ok.orders[0].OrderID)
	assert.Len(t, broken.checkouts, 1)

	require.NoError(t, w.Stop())
	assert.True(t, src.closed)
}

func TestRelayRejectsMalformedMessages(t *testing.T) {
	src := &sliceSource{msgs: []kafka.Message{{Value: []byte("not json")}}}
	w := NewNotifyRelayWorker(src, time.Second, &recordingSink{name: "ok"})

	require.NoError(t, w.Start(context.Background()))
	require.Len(t, src.errs, 1)
	assert.Error(t, src.errs[0])
}
