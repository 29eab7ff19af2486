package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCheckout() *models.CheckoutCompletedEvent {
	return &models.CheckoutCompletedEvent{
		BaseEvent: models.BaseEvent{EventID: "ev-1", EventType: models.EventTypeCheckoutCompleted},
		Buyer:     models.Buyer{Name: "Mona", Phone: "0100", Gov: "Cairo", City: "Maadi"},
		OrderIDs:  []int64{4, 5},
		ItemCount: 3,
		Total:     decimal.NewFromInt(780),
	}
}

func sampleOrder() *models.OrderCreatedEvent {
	return &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{EventID: "ev-2", EventType: models.EventTypeOrderCreated},
		Buyer:     models.Buyer{Name: "Ali", Phone: "0111", Gov: "Giza", City: "Dokki"},
		OrderID:   12,
		Product:   "Hoodie",
		Amount:    2,
		Total:     decimal.RequireFromString("530.5"),
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t,
		"New checkout: items=3 | Total=780 | Name=Mona | Phone=0100 | Cairo/Maadi",
		CheckoutCompletedMessage(sampleCheckout()))
	assert.Equal(t,
		"New order #12: Hoodie x2 | Total=530.5 | Name=Ali | Phone=0111 | Giza/Dokki",
		OrderCreatedMessage(sampleOrder()))
}

func TestWebhookPostsContent(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, time.Second)
	require.NoError(t, wh.CheckoutCompleted(context.Background(), sampleCheckout()))
	assert.True(t, strings.HasPrefix(got["content"], "New checkout: items=3"))
}

func TestWebhookDisabled(t *testing.T) {
	wh := NewWebhook("", time.Second)
	assert.ErrorIs(t, wh.Send(context.Background(), "hello"), ErrWebhookDisabled)
}

func TestWebhookBreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, time.Second)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		err := wh.Send(ctx, "ping")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	}

	err := wh.Send(ctx, "ping")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.EqualValues(t, 5, hits.Load())
}

type fakeSink struct {
	name  string
	err   error
	delay time.Duration

	mu        sync.Mutex
	orders    int
	checkouts int
	ctxErr    error
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) OrderCreated(ctx context.Context, _ *models.OrderCreatedEvent) error {
	f.mu.Lock()
	f.orders++
	f.mu.Unlock()
	return f.err
}

func (f *fakeSink) CheckoutCompleted(ctx context.Context, _ *models.CheckoutCompletedEvent) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			f.mu.Lock()
			f.ctxErr = ctx.Err()
			f.mu.Unlock()
			return ctx.Err()
		}
	}
	f.mu.Lock()
	f.checkouts++
	f.mu.Unlock()
	return f.err
}

func TestDispatcherIsolatesSinkFailures(t *testing.T) {
	ok := &fakeSink{name: "ok"}
	broken := &fakeSink{name: "broken", err: errors.New("boom")}
	d := NewDispatcher(time.Second, ok, broken)

	d.DispatchOrderCreated(sampleOrder())
	d.DispatchCheckoutCompleted(sampleCheckout())
	d.Wait()

	assert.Equal(t, 1, ok.orders)
	assert.Equal(t, 1, ok.checkouts)
	assert.Equal(t, 1, broken.orders)
	assert.Equal(t, 1, broken.checkouts)
}

func TestDispatcherBoundsSlowSinks(t *testing.T) {
	slow := &fakeSink{name: "slow", delay: time.Minute}
	d := NewDispatcher(20*time.Millisecond, slow)

	start := time.Now()
	d.DispatchCheckoutCompleted(sampleCheckout())
	assert.Less(t, time.Since(start), 10*time.Millisecond, "dispatch must not block the caller")

	d.Wait()
	assert.ErrorIs(t, slow.ctxErr, context.DeadlineExceeded)
	assert.Zero(t, slow.checkouts)
}

func TestHubBroadcastsToClients(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.CheckoutCompleted(context.Background(), sampleCheckout()))

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg struct {
		Type  string                        `json:"type"`
		Event models.CheckoutCompletedEvent `json:"event"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, models.EventTypeCheckoutCompleted, msg.Type)
	assert.Equal(t, []int64{4, 5}, msg.Event.OrderIDs)
	assert.True(t, decimal.NewFromInt(780).Equal(msg.Event.Total))
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	hub := NewHub([]string{"https://shop.example"})
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://shop.example"}})
	require.NoError(t, err)
	conn.Close()
}
