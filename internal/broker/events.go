package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher publishes order events to Kafka. It is one of the
// notification sinks.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func (ep *EventPublisher) Name() string { return "kafka" }

// OrderCreated publishes an ORDER_CREATED event keyed by order id
func (ep *EventPublisher) OrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event.EventType, event)
}

// CheckoutCompleted publishes a CHECKOUT_COMPLETED event keyed by its first order id
func (ep *EventPublisher) CheckoutCompleted(ctx context.Context, event *models.CheckoutCompletedEvent) error {
	key := "checkout"
	if len(event.OrderIDs) > 0 {
		key = fmt.Sprintf("checkout-%d", event.OrderIDs[0])
	}
	return ep.producer.PublishEvent(ctx, key, event.EventType, event)
}

// EventHandler routes incoming events to registered callbacks
type EventHandler struct {
	onOrderCreated      func(context.Context, *models.OrderCreatedEvent) error
	onCheckoutCompleted func(context.Context, *models.CheckoutCompletedEvent) error
	logger              *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnOrderCreated registers a handler for ORDER_CREATED events
func (eh *EventHandler) OnOrderCreated(handler func(context.Context, *models.OrderCreatedEvent) error) {
	eh.onOrderCreated = handler
}

// OnCheckoutCompleted registers a handler for CHECKOUT_COMPLETED events
func (eh *EventHandler) OnCheckoutCompleted(handler func(context.Context, *models.CheckoutCompletedEvent) error) {
	eh.onCheckoutCompleted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOrderCreated:
		if eh.onOrderCreated != nil {
			var event models.OrderCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderCreated event: %w", err)
			}
			return eh.onOrderCreated(ctx, &event)
		}

	case models.EventTypeCheckoutCompleted:
		if eh.onCheckoutCompleted != nil {
			var event models.CheckoutCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CheckoutCompleted event: %w", err)
			}
			return eh.onCheckoutCompleted(ctx, &event)
		}

	default:
		eh.logger.Debug("Unhandled event type", zap.String("event_type", baseEvent.EventType))
	}

	return nil
}
