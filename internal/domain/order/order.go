package order

import (
	"context"
	"sync"
	"time"
)

// TimestampLayout is the stored text form of Order.CreatedAt.
const TimestampLayout = "2006-01-02 15:04:05"

// Order is an immutable order header. Its line items are owned by it.
type Order struct {
	ID        int64
	CreatedAt time.Time
}

// LineItem links one order to one product. Creating it decrements the
// product's stock by Quantity.
type LineItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
}

// ItemView is a line item joined with its product name.
type ItemView struct {
	ProductName string
	Quantity    int
}

// LineItemInput holds validated input for AddLineItem.
type LineItemInput struct {
	ProductID int64
	Quantity  int
}

// Repository defines persistence operations for orders and line items.
type Repository interface {
	Create(ctx context.Context, createdAt time.Time) (*Order, error)
	// AddLineItem inserts the line item and decrements product stock in one
	// atomic step. It returns product.ErrNotFound for an unknown product and
	// *InsufficientStockError when stock is lower than the requested quantity;
	// in both cases nothing is written.
	AddLineItem(ctx context.Context, orderID int64, in LineItemInput) (*LineItem, error)
	// ListItems returns the order's items in line item insertion order.
	ListItems(ctx context.Context, orderID int64) ([]ItemView, error)
}

// Session tracks the active order: the most recently created one, the only
// order new line items may be added to. The zero value has no active order.
type Session struct {
	mu     sync.Mutex
	active int64
	ok     bool
}

// NewSession returns a session with no active order.
func NewSession() *Session {
	return &Session{}
}

// ActiveOrder returns the active order id, if any.
func (s *Session) ActiveOrder() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, s.ok
}

func (s *Session) activate(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active, s.ok = id, true
}
