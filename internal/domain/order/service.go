package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/sklad/internal/domain/input"
	"github.com/xenking/sklad/internal/domain/product"
)

// ParseLineItem validates raw text form values for AddLineItem.
func ParseLineItem(productID, quantity string) (LineItemInput, error) {
	id, err := input.Int("productId", productID)
	if err != nil {
		return LineItemInput{}, err
	}
	q, err := input.PositiveInt("quantity", quantity)
	if err != nil {
		return LineItemInput{}, err
	}
	return LineItemInput{ProductID: id, Quantity: q}, nil
}

// Service is the order manager. All operations act on an explicit Session.
type Service struct {
	orders Repository
	now    func() time.Time
}

// NewService creates an order Service.
func NewService(orders Repository) *Service {
	return &Service{
		orders: orders,
		now:    time.Now,
	}
}

// CreateOrder persists a new order and makes it the session's active order,
// replacing any previous one.
func (s *Service) CreateOrder(ctx context.Context, sess *Session) (*Order, error) {
	// Stored with seconds precision.
	o, err := s.orders.Create(ctx, s.now().Truncate(time.Second))
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	sess.activate(o.ID)

	zctx.From(ctx).Info("Order created", zap.Int64("order_id", o.ID))
	return o, nil
}

// AddLineItem adds a line item to the active order and decrements stock.
// Either both effects are stored or neither is.
func (s *Service) AddLineItem(ctx context.Context, sess *Session, in LineItemInput) (*LineItem, error) {
	orderID, ok := sess.ActiveOrder()
	if !ok {
		return nil, ErrNoActiveOrder
	}
	if in.Quantity <= 0 {
		return nil, input.Invalid("quantity", "must be greater than 0")
	}

	lg := zctx.From(ctx).With(
		zap.Int64("order_id", orderID),
		zap.Int64("product_id", in.ProductID),
		zap.Int("quantity", in.Quantity),
	)

	item, err := s.orders.AddLineItem(ctx, orderID, in)
	if err != nil {
		var stockErr *InsufficientStockError
		switch {
		case errors.Is(err, product.ErrNotFound):
			lg.Debug("Line item rejected: unknown product")
			return nil, &ProductNotFoundError{ProductID: in.ProductID}
		case errors.As(err, &stockErr):
			lg.Debug("Line item rejected: insufficient stock", zap.Int("available", stockErr.Available))
			return nil, stockErr
		}
		return nil, errors.Wrap(err, "add line item")
	}

	lg.Info("Line item added", zap.Int64("line_item_id", item.ID))
	return item, nil
}

// ListActiveItems returns the active order's items. With no active order the
// result is empty.
func (s *Service) ListActiveItems(ctx context.Context, sess *Session) ([]ItemView, error) {
	orderID, ok := sess.ActiveOrder()
	if !ok {
		return []ItemView{}, nil
	}
	return s.ListItems(ctx, orderID)
}

// ListItems returns the items of any order.
func (s *Service) ListItems(ctx context.Context, orderID int64) ([]ItemView, error) {
	items, err := s.orders.ListItems(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "list items of order %d", orderID)
	}
	if items == nil {
		items = []ItemView{}
	}
	return items, nil
}
