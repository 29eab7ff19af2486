package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// CartStore is the cart data access used by CartService
type CartStore interface {
	AddCartLine(ctx context.Context, line *models.CartLine) error
	ListCart(ctx context.Context, cartID string) ([]models.CartView, error)
	UpdateCartLineQuantity(ctx context.Context, cartID string, lineID int64, quantity int) error
	DeleteCartLine(ctx context.Context, cartID string, lineID int64) error
}

// CartService handles cart mutations scoped to one cart identity
type CartService struct {
	store  CartStore
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store CartStore) *CartService {
	return &CartService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// AddLineRequest represents a request to add a product variant to the cart
type AddLineRequest struct {
	ProductID models.Flex `json:"product_id"`
	Size      models.Flex `json:"size"`
	Color     models.Flex `json:"color"`
	Quantity  models.Flex `json:"quantity"`
}

// UpdateLineRequest represents a quantity change on a cart line
type UpdateLineRequest struct {
	Quantity models.Flex `json:"quantity"`
}

// AddLine adds a line to the cart. The product is not checked against the
// catalog here; lines for unknown products are dropped at checkout.
func (s *CartService) AddLine(ctx context.Context, cartID string, req *AddLineRequest) (int64, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddLine")
	defer span.End()

	if !req.ProductID.Truthy() {
		return 0, ErrMissingProduct
	}
	productID, ok := req.ProductID.WholeNumber()
	if !ok {
		return 0, newValidationError("product_id must be an integer", "product_id")
	}

	line := &models.CartLine{
		CartID:    cartID,
		ProductID: int64(productID),
		Size:      req.Size.String(),
		Color:     req.Color.String(),
		Quantity:  coerceQuantity(req.Quantity),
	}
	if err := s.store.AddCartLine(ctx, line); err != nil {
		return 0, fmt.Errorf("failed to add cart line: %w", err)
	}

	util.CartOperationsTotal.WithLabelValues("add").Inc()
	s.logger.Debug("Cart line added",
		zap.String("cart_id", cartID),
		zap.Int64("line_id", line.ID),
		zap.Int64("product_id", line.ProductID))
	return line.ID, nil
}

// UpdateLine sets a line's quantity; a quantity of zero or less removes the line
func (s *CartService) UpdateLine(ctx context.Context, cartID string, lineID int64, req *UpdateLineRequest) error {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateLine")
	defer span.End()

	if req.Quantity.Empty() {
		return newValidationError("quantity required", "quantity")
	}
	qty, ok := req.Quantity.WholeNumber()
	if !ok {
		return newValidationError("quantity must be integer", "quantity")
	}

	if qty <= 0 {
		if err := s.store.DeleteCartLine(ctx, cartID, lineID); err != nil {
			return translateStoreErr(err)
		}
		util.CartOperationsTotal.WithLabelValues("remove").Inc()
		return nil
	}

	if err := s.store.UpdateCartLineQuantity(ctx, cartID, lineID, qty); err != nil {
		return translateStoreErr(err)
	}
	util.CartOperationsTotal.WithLabelValues("update").Inc()
	return nil
}

// RemoveLine deletes a line owned by cartID
func (s *CartService) RemoveLine(ctx context.Context, cartID string, lineID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveLine")
	defer span.End()

	if err := s.store.DeleteCartLine(ctx, cartID, lineID); err != nil {
		return translateStoreErr(err)
	}
	util.CartOperationsTotal.WithLabelValues("remove").Inc()
	return nil
}

// ListCart returns the cart newest first, with each line's display image
// reduced to the first of its comma-separated references
func (s *CartService) ListCart(ctx context.Context, cartID string) ([]models.CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.ListCart")
	defer span.End()

	lines, err := s.store.ListCart(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	for i := range lines {
		lines[i].Image = PrimaryImage(lines[i].Image)
	}
	return lines, nil
}

// PrimaryImage returns the first reference of a comma-separated image list
func PrimaryImage(image string) string {
	first, _, _ := strings.Cut(image, ",")
	return strings.TrimSpace(first)
}

// coerceQuantity accepts only plain positive digit strings; anything else is 1
func coerceQuantity(f models.Flex) int {
	s := f.String()
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
