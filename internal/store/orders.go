package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/models"

	"github.com/jmoiron/sqlx"
)

// Tx is the set of operations a checkout runs inside one database transaction
type Tx interface {
	CheckoutLines(ctx context.Context, cartID string) ([]models.CheckoutLine, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	DeleteCartLines(ctx context.Context, cartID string, ids []int64) (int64, error)
}

type sqlTx struct {
	tx     *sqlx.Tx
	driver string
}

// ExecTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise
func (s *Store) ExecTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlTx{tx: tx, driver: s.driver}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CheckoutLines reads every cart line for cartID, oldest first, left-joined
// with the current product. On Postgres the cart rows are locked until the
// transaction ends.
func (t *sqlTx) CheckoutLines(ctx context.Context, cartID string) ([]models.CheckoutLine, error) {
	query := `
		SELECT ci.id, ci.product_id, ci.size, ci.color, ci.quantity,
		       p.name AS product_name, p.price AS product_price
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = ?
		ORDER BY ci.id ASC`
	if t.driver == DriverPostgres {
		query += " FOR UPDATE OF ci"
	}

	lines := []models.CheckoutLine{}
	err := t.tx.SelectContext(ctx, &lines, t.tx.Rebind(query), cartID)
	return lines, err
}

func (t *sqlTx) CreateOrder(ctx context.Context, order *models.Order) error {
	return insertOrder(ctx, t.tx, order)
}

// DeleteCartLines removes exactly the given lines of cartID. Lines added after
// they were read survive.
func (t *sqlTx) DeleteCartLines(ctx context.Context, cartID string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In("DELETE FROM cart_items WHERE cart_id = ? AND id IN (?)", cartID, ids)
	if err != nil {
		return 0, err
	}

	res, err := t.tx.ExecContext(ctx, t.tx.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateOrder creates a new order row outside of any checkout
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	return insertOrder(ctx, s.db, order)
}

func insertOrder(ctx context.Context, q sqlx.ExtContext, order *models.Order) error {
	query := q.Rebind(`
		INSERT INTO orders (product, color, size, amount, name, phone, gov, city, address, price, shipping, total, addition, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	return sqlx.GetContext(ctx, q, &order.ID, query,
		order.Product, order.Color, order.Size, order.Amount,
		order.Name, order.Phone, order.Gov, order.City, order.Address,
		order.Price, order.Shipping, order.Total, order.Addition, order.Date)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, s.db.Rebind("SELECT * FROM orders WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders retrieves all orders, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY id DESC")
	return orders, err
}

// DeleteOrder removes an order row
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM orders WHERE id = ?"), id)
	if err != nil {
		return err
	}
	return expectRows(res, fmt.Sprintf("order %d", id))
}
