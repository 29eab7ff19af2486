package notify

import (
	"context"
	"fmt"

	"storefront/internal/models"
)

// Notifier is a best-effort sink for order events. Errors are reported to the
// caller for logging only; they never affect the operation that produced the event.
type Notifier interface {
	Name() string
	OrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	CheckoutCompleted(ctx context.Context, event *models.CheckoutCompletedEvent) error
}

// OrderCreatedMessage renders the chat line announcing a direct order
func OrderCreatedMessage(e *models.OrderCreatedEvent) string {
	return fmt.Sprintf("New order #%d: %s x%d | Total=%s | Name=%s | Phone=%s | %s/%s",
		e.OrderID, e.Product, e.Amount, e.Total.String(), e.Name, e.Phone, e.Gov, e.City)
}

// CheckoutCompletedMessage renders the chat line announcing a checkout
func CheckoutCompletedMessage(e *models.CheckoutCompletedEvent) string {
	return fmt.Sprintf("New checkout: items=%d | Total=%s | Name=%s | Phone=%s | %s/%s",
		e.ItemCount, e.Total.String(), e.Name, e.Phone, e.Gov, e.City)
}
