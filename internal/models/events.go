package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated      = "ORDER_CREATED"
	EventTypeCheckoutCompleted = "CHECKOUT_COMPLETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// Buyer identifies who placed an order and where it ships
type Buyer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Gov   string `json:"gov"`
	City  string `json:"city"`
}

// OrderCreatedEvent published when a single order row is created directly
type OrderCreatedEvent struct {
	BaseEvent
	Buyer
	OrderID int64           `json:"order_id"`
	Product string          `json:"product"`
	Amount  int             `json:"amount"`
	Total   decimal.Decimal `json:"total"`
}

// CheckoutCompletedEvent published after a cart has been converted into orders
type CheckoutCompletedEvent struct {
	BaseEvent
	Buyer
	OrderIDs  []int64         `json:"order_ids"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}
