package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/sklad/internal/domain/order"
	"github.com/xenking/sklad/internal/domain/product"
)

const (
	insertOrderSQL = `INSERT INTO orders (created_at) VALUES ($1) RETURNING id`

	lockProductStockSQL = `SELECT quantity FROM products WHERE id = $1 FOR UPDATE`

	insertLineItemSQL = `INSERT INTO order_line_items (order_id, product_id, quantity)
		VALUES ($1, $2, $3) RETURNING id`

	decrementStockSQL = `UPDATE products SET quantity = quantity - $1
		WHERE id = $2 AND quantity >= $1`

	listOrderItemsSQL = `SELECT p.name, li.quantity
		FROM order_line_items li
		JOIN products p ON p.id = li.product_id
		WHERE li.order_id = $1
		ORDER BY li.id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. The timestamp is stored as text in
// order.TimestampLayout.
func (r *OrderRepository) Create(ctx context.Context, createdAt time.Time) (*order.Order, error) {
	var id int64
	if err := r.pool.QueryRow(ctx, insertOrderSQL, createdAt.Format(order.TimestampLayout)).Scan(&id); err != nil {
		return nil, errors.Wrap(err, "insert order")
	}
	return &order.Order{ID: id, CreatedAt: createdAt}, nil
}

// AddLineItem runs the stock check, the line item insert and the stock
// decrement in one transaction. The product row stays locked from the check
// until commit; any error rolls everything back.
func (r *OrderRepository) AddLineItem(ctx context.Context, orderID int64, in order.LineItemInput) (*order.LineItem, error) {
	item := &order.LineItem{
		OrderID:   orderID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var available int
		if err := tx.QueryRow(ctx, lockProductStockSQL, in.ProductID).Scan(&available); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return product.ErrNotFound
			}
			return errors.Wrapf(err, "lock product %d", in.ProductID)
		}
		if available < in.Quantity {
			return &order.InsufficientStockError{
				ProductID: in.ProductID,
				Requested: in.Quantity,
				Available: available,
			}
		}

		if err := tx.QueryRow(ctx, insertLineItemSQL, orderID, in.ProductID, in.Quantity).Scan(&item.ID); err != nil {
			return errors.Wrap(err, "insert line item")
		}

		tag, err := tx.Exec(ctx, decrementStockSQL, in.Quantity, in.ProductID)
		if err != nil {
			return errors.Wrap(err, "decrement stock")
		}
		if tag.RowsAffected() != 1 {
			return errors.Errorf("decrement stock of product %d: no row updated", in.ProductID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns the order's items joined with product names, in line
// item insertion order.
func (r *OrderRepository) ListItems(ctx context.Context, orderID int64) ([]order.ItemView, error) {
	rows, err := r.pool.Query(ctx, listOrderItemsSQL, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "list items of order %d", orderID)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.ItemView, error) {
		var v order.ItemView
		err := row.Scan(&v.ProductName, &v.Quantity)
		return v, err
	})
}
