package service

import (
	"context"
	"sync"
	"testing"

	"storefront/internal/models"
	"storefront/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu        sync.Mutex
	orders    []*models.OrderCreatedEvent
	checkouts []*models.CheckoutCompletedEvent
}

func (d *recordingDispatcher) DispatchOrderCreated(event *models.OrderCreatedEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orders = append(d.orders, event)
}

func (d *recordingDispatcher) DispatchCheckoutCompleted(event *models.CheckoutCompletedEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checkouts = append(d.checkouts, event)
}

func setupStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.NewStore(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.RunMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedProduct(t *testing.T, s *store.Store, name, price string) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Image:  " /uploads/front.jpg , /uploads/back.jpg",
		Status: models.ProductStatusIn,
	}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

func seedLine(t *testing.T, s *store.Store, cartID string, productID int64, qty int) int64 {
	t.Helper()

	line := &models.CartLine{CartID: cartID, ProductID: productID, Size: "L", Color: "black", Quantity: qty}
	require.NoError(t, s.AddCartLine(context.Background(), line))
	return line.ID
}

func validCheckout() *CheckoutRequest {
	return &CheckoutRequest{
		Name:     "Mona",
		Phone:    "0100000000",
		Gov:      "Cairo",
		City:     "Nasr City",
		Address:  "12 Street",
		Shipping: models.NewFlex("30"),
	}
}
