package product

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/sklad/internal/domain/input"
)

// ParseNew validates raw text form values for a new product.
func ParseNew(name, price, quantity string) (NewProduct, error) {
	n, err := input.Required("name", name)
	if err != nil {
		return NewProduct{}, err
	}
	p, err := input.NonNegativeDecimal("price", price)
	if err != nil {
		return NewProduct{}, err
	}
	q, err := input.NonNegativeInt("quantity", quantity)
	if err != nil {
		return NewProduct{}, err
	}
	return NewProduct{Name: n, Price: p, Quantity: q}, nil
}

// Validate checks an already typed NewProduct with the same rules ParseNew
// applies to text input.
func (p NewProduct) Validate() error {
	if _, err := input.Required("name", p.Name); err != nil {
		return err
	}
	if err := input.Price("price", p.Price); err != nil {
		return err
	}
	switch {
	case p.Quantity < 0:
		return input.Invalid("quantity", "must not be negative")
	case p.Quantity > input.MaxQuantity:
		return input.Invalid("quantity", "too large")
	}
	return nil
}

// Service is the inventory manager: the only way products enter the store.
type Service struct {
	products Repository
}

// NewService creates a product Service.
func NewService(products Repository) *Service {
	return &Service{products: products}
}

// Add validates p and persists it, returning the generated identifier.
func (s *Service) Add(ctx context.Context, p NewProduct) (int64, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return 0, err
	}

	id, err := s.products.Create(ctx, p)
	if err != nil {
		return 0, errors.Wrap(err, "create product")
	}

	zctx.From(ctx).Info("Product added",
		zap.Int64("product_id", id),
		zap.String("name", p.Name),
		zap.Int("quantity", p.Quantity),
	)
	return id, nil
}

// List returns all products in insertion order.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return products, nil
}

// Get returns a single product or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	return p, nil
}
