package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/models"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrWebhookDisabled is returned when no webhook URL is configured
var ErrWebhookDisabled = errors.New("webhook not configured")

// Webhook posts Discord-style {"content": "..."} messages to a URL
type Webhook struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewWebhook creates a webhook sink. An empty url yields a sink whose sends
// fail with ErrWebhookDisabled.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{
		url: url,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        "notify-webhook",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) OrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return w.Send(ctx, OrderCreatedMessage(event))
}

func (w *Webhook) CheckoutCompleted(ctx context.Context, event *models.CheckoutCompletedEvent) error {
	return w.Send(ctx, CheckoutCompletedMessage(event))
}

// Send posts one message
func (w *Webhook) Send(ctx context.Context, content string) error {
	if w.url == "" {
		return ErrWebhookDisabled
	}

	_, err := w.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, w.post(ctx, content)
	})
	return err
}

func (w *Webhook) post(ctx context.Context, content string) error {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
