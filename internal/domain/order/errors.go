package order

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/sklad/internal/domain/product"
)

// ErrNoActiveOrder is returned by operations that need an active order when
// none has been created yet.
var ErrNoActiveOrder = errors.New("no active order: create an order first")

// ProductNotFoundError indicates a line item references a missing product.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// Unwrap lets callers match the product.ErrNotFound sentinel.
func (e *ProductNotFoundError) Unwrap() error { return product.ErrNotFound }

// InsufficientStockError indicates the product has fewer units on hand than
// requested.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}
