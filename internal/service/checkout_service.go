package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TxRunner runs a function inside one database transaction
type TxRunner interface {
	ExecTx(ctx context.Context, fn func(store.Tx) error) error
}

// Locker provides a short-lived mutual exclusion keyed by name
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// EventDispatcher delivers order events after they have been committed
type EventDispatcher interface {
	DispatchOrderCreated(event *models.OrderCreatedEvent)
	DispatchCheckoutCompleted(event *models.CheckoutCompletedEvent)
}

// CheckoutService converts a cart into order rows
type CheckoutService struct {
	store    TxRunner
	locker   Locker
	lockTTL  time.Duration
	events   EventDispatcher
	shipping ShippingPolicy
	now      func() time.Time
	logger   *zap.Logger
}

// CheckoutOption customizes a CheckoutService
type CheckoutOption func(*CheckoutService)

// WithLocker serializes checkouts of the same cart through locker
func WithLocker(locker Locker, ttl time.Duration) CheckoutOption {
	return func(s *CheckoutService) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

// WithClock overrides the time source used for default order dates
func WithClock(now func() time.Time) CheckoutOption {
	return func(s *CheckoutService) { s.now = now }
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(txRunner TxRunner, events EventDispatcher, shipping ShippingPolicy, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		store:    txRunner,
		events:   events,
		shipping: shipping,
		now:      time.Now,
		logger:   util.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckoutRequest carries the buyer and shipping fields of a checkout
type CheckoutRequest struct {
	Name     string      `json:"name" form:"name"`
	Phone    string      `json:"phone" form:"phone"`
	Gov      string      `json:"gov" form:"gov"`
	City     string      `json:"city" form:"city"`
	Address  string      `json:"address" form:"address"`
	Addition string      `json:"addition" form:"addition"`
	Shipping models.Flex `json:"shipping"`
	Date     string      `json:"date" form:"date"`
}

// CheckoutResult lists the created order ids in cart insertion order
type CheckoutResult struct {
	OK      bool    `json:"ok"`
	Created []int64 `json:"created"`
}

type checkoutInput struct {
	buyer    models.Buyer
	address  string
	addition string
	shipping decimal.Decimal
	date     string
}

func (s *CheckoutService) validate(req *CheckoutRequest) (*checkoutInput, error) {
	in := &checkoutInput{
		buyer: models.Buyer{
			Name:  strings.TrimSpace(req.Name),
			Phone: strings.TrimSpace(req.Phone),
			Gov:   strings.TrimSpace(req.Gov),
			City:  strings.TrimSpace(req.City),
		},
		address:  strings.TrimSpace(req.Address),
		addition: strings.TrimSpace(req.Addition),
		date:     strings.TrimSpace(req.Date),
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", in.buyer.Name},
		{"phone", in.buyer.Phone},
		{"gov", in.buyer.Gov},
		{"city", in.buyer.City},
		{"address", in.address},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, newValidationError("Missing required fields", missing...)
	}

	// Unparseable shipping degrades to free shipping; a negative charge is rejected.
	if d, ok := req.Shipping.Decimal(); ok {
		if d.IsNegative() {
			return nil, newValidationError("Shipping must not be negative", "shipping")
		}
		in.shipping = d
	}

	if in.date == "" {
		in.date = s.now().Format(models.DateLayout)
	}
	return in, nil
}

// Checkout turns every cart line of cartID into an order row and removes
// those lines, all in one transaction. Lines whose product has been deleted
// are removed without producing an order.
func (s *CheckoutService) Checkout(ctx context.Context, cartID string, req *CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	in, err := s.validate(req)
	if err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("validation").Inc()
		util.FailSpan(span, err)
		return nil, err
	}

	if cartID == "" {
		util.CheckoutsFailedTotal.WithLabelValues("missing_cart").Inc()
		return nil, ErrMissingCart
	}

	if s.locker != nil {
		release, err := s.lock(ctx, cartID)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	var (
		created   []int64
		itemCount int
		subtotal  = decimal.Zero
		orphaned  int
	)

	err = s.store.ExecTx(ctx, func(tx store.Tx) error {
		lines, err := tx.CheckoutLines(ctx, cartID)
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}

		read := make([]int64, 0, len(lines))
		for _, line := range lines {
			read = append(read, line.ID)
			if line.Orphaned() {
				orphaned++
				continue
			}

			qty := max(line.Quantity, 1)
			unitPrice := line.ProductPrice.Decimal
			lineShipping := s.shipping.ShippingFor(len(created), in.shipping)

			order := &models.Order{
				Product:  *line.ProductName,
				Color:    line.Color,
				Size:     line.Size,
				Amount:   qty,
				Name:     in.buyer.Name,
				Phone:    in.buyer.Phone,
				Gov:      in.buyer.Gov,
				City:     in.buyer.City,
				Address:  in.address,
				Price:    unitPrice,
				Shipping: lineShipping,
				Total:    LineTotal(unitPrice, qty, lineShipping),
				Addition: in.addition,
				Date:     in.date,
			}
			if err := tx.CreateOrder(ctx, order); err != nil {
				return fmt.Errorf("failed to create order for cart line %d: %w", line.ID, err)
			}

			created = append(created, order.ID)
			itemCount += qty
			subtotal = subtotal.Add(unitPrice.Mul(decimal.NewFromInt(int64(qty))))
		}

		if len(created) == 0 {
			return ErrEmptyCart
		}

		if _, err := tx.DeleteCartLines(ctx, cartID, read); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		util.FailSpan(span, err)
		if errors.Is(err, ErrEmptyCart) {
			util.CheckoutsFailedTotal.WithLabelValues("empty_cart").Inc()
		} else {
			util.CheckoutsFailedTotal.WithLabelValues("store").Inc()
			util.LoggerFromContext(ctx).Error("Checkout failed", zap.String("cart_id", cartID), zap.Error(err))
		}
		return nil, err
	}

	if orphaned > 0 {
		util.CheckoutOrphanedLinesTotal.Add(float64(orphaned))
		s.logger.Warn("Dropped cart lines whose product no longer exists",
			zap.String("cart_id", cartID),
			zap.Int("lines", orphaned))
	}

	util.CheckoutsCompletedTotal.Inc()
	util.OrdersCreatedTotal.WithLabelValues("checkout").Add(float64(len(created)))
	util.LoggerFromContext(ctx).Info("Checkout completed",
		zap.String("cart_id", cartID),
		zap.Int64s("order_ids", created),
		zap.Int("items", itemCount))

	if s.events != nil {
		s.events.DispatchCheckoutCompleted(&models.CheckoutCompletedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeCheckoutCompleted,
				Timestamp: time.Now(),
			},
			Buyer:     in.buyer,
			OrderIDs:  created,
			ItemCount: itemCount,
			Total:     subtotal.Add(in.shipping),
		})
	}

	return &CheckoutResult{OK: true, Created: created}, nil
}

// lock takes the per-cart checkout lock. A lock backend failure is logged and
// the checkout proceeds on the database transaction alone.
func (s *CheckoutService) lock(ctx context.Context, cartID string) (func(), error) {
	key := "checkout:" + cartID

	token, ok, err := s.locker.AcquireLock(ctx, key, s.lockTTL)
	if err != nil {
		s.logger.Warn("Checkout lock unavailable", zap.String("cart_id", cartID), zap.Error(err))
		return func() {}, nil
	}
	if !ok {
		util.CheckoutsFailedTotal.WithLabelValues("in_progress").Inc()
		return nil, ErrCheckoutInProgress
	}

	return func() {
		if err := s.locker.ReleaseLock(context.Background(), key, token); err != nil {
			s.logger.Warn("Failed to release checkout lock", zap.String("cart_id", cartID), zap.Error(err))
		}
	}, nil
}
