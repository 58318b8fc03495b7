package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a stock item. Quantity is the number of units on hand and only
// ever decreases, through order line items.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// NewProduct holds validated input for a product that is not stored yet.
type NewProduct struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// Repository defines persistence operations for products.
type Repository interface {
	Create(ctx context.Context, p NewProduct) (int64, error)
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}
