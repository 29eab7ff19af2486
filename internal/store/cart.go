package store

import (
	"context"
	"fmt"

	"storefront/internal/models"
)

// AddCartLine inserts a cart line and sets its generated ID
func (s *Store) AddCartLine(ctx context.Context, line *models.CartLine) error {
	query := s.db.Rebind(`
		INSERT INTO cart_items (cart_id, product_id, size, color, quantity)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)

	return s.db.GetContext(ctx, &line.ID, query,
		line.CartID, line.ProductID, line.Size, line.Color, line.Quantity)
}

// ListCart returns the cart's lines joined with their current product, newest first.
// Lines whose product no longer exists are not returned.
func (s *Store) ListCart(ctx context.Context, cartID string) ([]models.CartView, error) {
	query := s.db.Rebind(`
		SELECT ci.id, ci.cart_id, ci.product_id, ci.size, ci.color, ci.quantity, ci.created_at,
		       p.name, p.price, p.image
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = ?
		ORDER BY ci.id DESC`)

	lines := []models.CartView{}
	err := s.db.SelectContext(ctx, &lines, query, cartID)
	return lines, err
}

// GetCartLines returns the raw cart lines for a cart, oldest first
func (s *Store) GetCartLines(ctx context.Context, cartID string) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	err := s.db.SelectContext(ctx, &lines, s.db.Rebind(`
		SELECT id, cart_id, product_id, size, color, quantity, created_at
		FROM cart_items WHERE cart_id = ? ORDER BY id`), cartID)
	return lines, err
}

// UpdateCartLineQuantity sets the quantity of a line owned by cartID
func (s *Store) UpdateCartLineQuantity(ctx context.Context, cartID string, lineID int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		s.db.Rebind("UPDATE cart_items SET quantity = ? WHERE id = ? AND cart_id = ?"),
		quantity, lineID, cartID)
	if err != nil {
		return err
	}
	return expectRows(res, fmt.Sprintf("cart line %d", lineID))
}

// DeleteCartLine removes a line owned by cartID
func (s *Store) DeleteCartLine(ctx context.Context, cartID string, lineID int64) error {
	res, err := s.db.ExecContext(ctx,
		s.db.Rebind("DELETE FROM cart_items WHERE id = ? AND cart_id = ?"),
		lineID, cartID)
	if err != nil {
		return err
	}
	return expectRows(res, fmt.Sprintf("cart line %d", lineID))
}
