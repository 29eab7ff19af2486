package notify

import (
	"context"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// Dispatcher fans events out to every sink in the background. Each sink gets
// its own bounded timeout and its failures are only logged.
type Dispatcher struct {
	sinks   []Notifier
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher over sinks
func NewDispatcher(timeout time.Duration, sinks ...Notifier) *Dispatcher {
	return &Dispatcher{
		sinks:   sinks,
		timeout: timeout,
		logger:  util.GetLogger(),
	}
}

// DispatchOrderCreated notifies all sinks of a direct order without blocking
func (d *Dispatcher) DispatchOrderCreated(event *models.OrderCreatedEvent) {
	d.dispatch(event.EventType, func(ctx context.Context, n Notifier) error {
		return n.OrderCreated(ctx, event)
	})
}

// DispatchCheckoutCompleted notifies all sinks of a checkout without blocking
func (d *Dispatcher) DispatchCheckoutCompleted(event *models.CheckoutCompletedEvent) {
	d.dispatch(event.EventType, func(ctx context.Context, n Notifier) error {
		return n.CheckoutCompleted(ctx, event)
	})
}

func (d *Dispatcher) dispatch(eventType string, send func(context.Context, Notifier) error) {
	for _, sink := range d.sinks {
		d.wg.Add(1)
		go func(sink Notifier) {
			defer d.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					d.logger.Error("Notifier panicked", zap.String("sink", sink.Name()), zap.Any("panic", r))
					util.NotificationsTotal.WithLabelValues(sink.Name(), "panic").Inc()
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			if err := send(ctx, sink); err != nil {
				d.logger.Warn("Notification failed",
					zap.String("sink", sink.Name()),
					zap.String("event_type", eventType),
					zap.Error(err))
				util.NotificationsTotal.WithLabelValues(sink.Name(), "error").Inc()
				return
			}
			util.NotificationsTotal.WithLabelValues(sink.Name(), "ok").Inc()
		}(sink)
	}
}

// Wait blocks until every in-flight notification has finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
