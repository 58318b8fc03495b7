// Package memory is an in-process store for products, orders and line items.
//
// All state lives behind a single mutex, so every operation, including the
// paired line item insert and stock decrement, is applied atomically. Data is
// lost when the process exits.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/sklad/internal/domain/order"
	"github.com/xenking/sklad/internal/domain/product"
)

// Store implements order.Repository directly and product.Repository through
// Products.
type Store struct {
	mu       sync.Mutex
	products []product.Product
	orders   []order.Order
	items    []order.LineItem

	productSeq int64
	orderSeq   int64
	itemSeq    int64
}

var (
	_ product.Repository = productView{}
	_ order.Repository   = (*Store)(nil)
)

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Products exposes the product side of the store.
func (s *Store) Products() product.Repository { return productView{s} }

// Orders exposes the order side of the store.
func (s *Store) Orders() order.Repository { return s }

// Ping always succeeds; it matches the readiness check signature of the
// PostgreSQL pool.
func (s *Store) Ping(context.Context) error { return nil }

// productView resolves the Create method name clash between the two
// repository interfaces.
type productView struct{ s *Store }

func (v productView) Create(ctx context.Context, p product.NewProduct) (int64, error) {
	return v.s.CreateProduct(ctx, p)
}

func (v productView) List(ctx context.Context) ([]product.Product, error) { return v.s.ListProducts(ctx) }

func (v productView) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return v.s.GetProductByID(ctx, id)
}

func (v productView) ExistsByName(ctx context.Context, name string) (bool, error) {
	return v.s.ProductExistsByName(ctx, name)
}

// CreateProduct stores p under the next product id.
func (s *Store) CreateProduct(_ context.Context, p product.NewProduct) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.productSeq++
	s.products = append(s.products, product.Product{
		ID:       s.productSeq,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: p.Quantity,
	})
	return s.productSeq, nil
}

// ListProducts returns a copy of all products ordered by id.
func (s *Store) ListProducts(_ context.Context) ([]product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products), nil
}

// GetProductByID returns a copy of the product or product.ErrNotFound.
func (s *Store) GetProductByID(_ context.Context, id int64) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return nil, product.ErrNotFound
	}
	p := s.products[i]
	return &p, nil
}

// ProductExistsByName reports whether a product with exactly this name is stored.
func (s *Store) ProductExistsByName(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.ContainsFunc(s.products, func(p product.Product) bool {
		return p.Name == name
	}), nil
}

// Create stores a new order header.
func (s *Store) Create(_ context.Context, createdAt time.Time) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orderSeq++
	o := order.Order{ID: s.orderSeq, CreatedAt: createdAt}
	s.orders = append(s.orders, o)
	return &o, nil
}

// AddLineItem checks stock, then appends the item and decrements stock
// under the same lock.
func (s *Store) AddLineItem(_ context.Context, orderID int64, in order.LineItemInput) (*order.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.ContainsFunc(s.orders, func(o order.Order) bool { return o.ID == orderID }) {
		return nil, errOrderNotFound(orderID)
	}
	i := s.productIndex(in.ProductID)
	if i < 0 {
		return nil, product.ErrNotFound
	}
	p := &s.products[i]
	if p.Quantity < in.Quantity {
		return nil, &order.InsufficientStockError{
			ProductID: in.ProductID,
			Requested: in.Quantity,
			Available: p.Quantity,
		}
	}

	s.itemSeq++
	item := order.LineItem{
		ID:        s.itemSeq,
		OrderID:   orderID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
	}
	s.items = append(s.items, item)
	p.Quantity -= in.Quantity
	return &item, nil
}

// ListItems joins the order's line items with product names.
func (s *Store) ListItems(_ context.Context, orderID int64) ([]order.ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []order.ItemView{}
	for _, it := range s.items {
		if it.OrderID != orderID {
			continue
		}
		i := s.productIndex(it.ProductID)
		if i < 0 {
			continue
		}
		out = append(out, order.ItemView{ProductName: s.products[i].Name, Quantity: it.Quantity})
	}
	return out, nil
}

func errOrderNotFound(id int64) error {
	return errors.Errorf("order %d not found", id)
}

// productIndex relies on ids being assigned in append order.
func (s *Store) productIndex(id int64) int {
	i, ok := slices.BinarySearchFunc(s.products, id, func(p product.Product, id int64) int {
		return cmp.Compare(p.ID, id)
	})
	if !ok {
		return -1
	}
	return i
}
