package worker

import (
	"context"
	"time"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// MessageSource is a stream of broker messages
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// NotifyRelayWorker consumes order events from Kafka and forwards them to
// notification sinks that are not driven from the request path
type NotifyRelayWorker struct {
	source       MessageSource
	eventHandler *broker.EventHandler
	sinks        []notify.Notifier
	timeout      time.Duration
	logger       *zap.Logger
}

// NewNotifyRelayWorker creates a new relay worker
func NewNotifyRelayWorker(source MessageSource, timeout time.Duration, sinks ...notify.Notifier) *NotifyRelayWorker {
	w := &NotifyRelayWorker{
		source:       source,
		eventHandler: broker.NewEventHandler(),
		sinks:        sinks,
		timeout:      timeout,
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnOrderCreated(w.relayOrderCreated)
	w.eventHandler.OnCheckoutCompleted(w.relayCheckoutCompleted)
	return w
}

// Start consumes until ctx is cancelled
func (w *NotifyRelayWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notify relay worker", zap.Int("sinks", len(w.sinks)))
	return w.source.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop closes the underlying consumer
func (w *NotifyRelayWorker) Stop() error {
	w.logger.Info("Stopping notify relay worker")
	return w.source.Close()
}

func (w *NotifyRelayWorker) relayOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	w.relay(ctx, event.EventType, func(ctx context.Context, n notify.Notifier) error {
		return n.OrderCreated(ctx, event)
	})
	return nil
}

func (w *NotifyRelayWorker) relayCheckoutCompleted(ctx context.Context, event *models.CheckoutCompletedEvent) error {
	w.relay(ctx, event.EventType, func(ctx context.Context, n notify.Notifier) error {
		return n.CheckoutCompleted(ctx, event)
	})
	return nil
}

// relay delivers to each sink in turn. Delivery is best effort: failures are
// logged and the message is still committed.
func (w *NotifyRelayWorker) relay(ctx context.Context, eventType string, send func(context.Context, notify.Notifier) error) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.timeout)
		err := send(sinkCtx, sink)
		cancel()

		if err != nil {
			w.logger.Warn("Relay notification failed",
				zap.String("sink", sink.Name()),
				zap.String("event_type", eventType),
				zap.Error(err))
			util.NotificationsTotal.WithLabelValues(sink.Name(), "error").Inc()
			continue
		}
		util.NotificationsTotal.WithLabelValues(sink.Name(), "ok").Inc()
	}
}
