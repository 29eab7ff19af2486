package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderStore is the order data access used by OrderService
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// OrderService handles direct (back-office) order entry and order administration
type OrderService struct {
	store  OrderStore
	events EventDispatcher
	now    func() time.Time
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, events EventDispatcher) *OrderService {
	return &OrderService{
		store:  store,
		events: events,
		now:    time.Now,
		logger: util.GetLogger(),
	}
}

// CreateOrderRequest represents a directly entered order. Numeric fields
// accept numbers or numeric strings.
type CreateOrderRequest struct {
	Product  models.Flex `json:"product"`
	Color    models.Flex `json:"color"`
	Size     models.Flex `json:"size"`
	Amount   models.Flex `json:"amount"`
	Name     models.Flex `json:"name"`
	Phone    models.Flex `json:"phone"`
	Gov      models.Flex `json:"gov"`
	City     models.Flex `json:"city"`
	Address  models.Flex `json:"address"`
	Price    models.Flex `json:"price"`
	Shipping models.Flex `json:"shipping"`
	Total    models.Flex `json:"total"`
	Addition models.Flex `json:"addition"`
	Date     models.Flex `json:"date"`
}

// BuildOrder derives the stored row from a request. When price and shipping
// are numeric the total is price * max(amount, 1) + shipping; otherwise the
// caller's total is used, or zero.
func (s *OrderService) BuildOrder(req *CreateOrderRequest) *models.Order {
	amount, ok := req.Amount.WholeNumber()
	if !ok {
		amount = 1
	}

	price, priceOK := decimalOrZero(req.Price)
	shipping, shippingOK := decimalOrZero(req.Shipping)

	var total decimal.Decimal
	if priceOK && shippingOK {
		total = LineTotal(price, max(amount, 1), shipping)
	} else if t, ok := req.Total.Decimal(); ok {
		total = t
	}

	date := req.Date.String()
	if date == "" {
		date = s.now().Format(models.DateLayout)
	}

	return &models.Order{
		Product:  req.Product.String(),
		Color:    req.Color.String(),
		Size:     req.Size.String(),
		Amount:   max(amount, 1),
		Name:     req.Name.String(),
		Phone:    req.Phone.String(),
		Gov:      req.Gov.String(),
		City:     req.City.String(),
		Address:  req.Address.String(),
		Price:    price,
		Shipping: shipping,
		Total:    total,
		Addition: req.Addition.String(),
		Date:     date,
	}
}

// CreateOrder inserts one order row and notifies in the background
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	order := s.BuildOrder(req)
	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.FailSpan(span, err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.WithLabelValues("direct").Inc()
	s.logger.Info("Order created", zap.Int64("order_id", order.ID))

	if s.events != nil {
		s.events.DispatchOrderCreated(&models.OrderCreatedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCreated,
				Timestamp: time.Now(),
			},
			Buyer: models.Buyer{
				Name:  order.Name,
				Phone: order.Phone,
				Gov:   order.Gov,
				City:  order.City,
			},
			OrderID: order.ID,
			Product: order.Product,
			Amount:  order.Amount,
			Total:   order.Total,
		})
	}

	return order, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.store.GetOrderByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return order, nil
}

// ListOrders returns every order, newest first
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	return s.store.ListOrders(ctx)
}

// DeleteOrder removes an order row
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return translateStoreErr(err)
	}
	s.logger.Info("Order deleted", zap.Int64("order_id", id))
	return nil
}

// decimalOrZero treats an absent value as zero and reports whether the
// value, when present, was numeric
func decimalOrZero(f models.Flex) (decimal.Decimal, bool) {
	if f.Empty() {
		return decimal.Zero, true
	}
	return f.Decimal()
}
