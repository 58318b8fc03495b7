package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/sklad/internal/domain/product"
)

const (
	insertProductSQL = `INSERT INTO products (name, price, quantity) VALUES ($1, $2, $3) RETURNING id`

	listProductsSQL = `SELECT id, name, price, quantity FROM products ORDER BY id`

	getProductByIDSQL = `SELECT id, name, price, quantity FROM products WHERE id = $1`

	productExistsByNameSQL = `SELECT EXISTS (SELECT 1 FROM products WHERE name = $1)`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a product and returns its generated id.
func (r *ProductRepository) Create(ctx context.Context, p product.NewProduct) (int64, error) {
	var id int64
	if err := r.pool.QueryRow(ctx, insertProductSQL, p.Name, p.Price, p.Quantity).Scan(&id); err != nil {
		return 0, errors.Wrapf(err, "insert product %q", p.Name)
	}
	return id, nil
}

// List returns all products ordered by id.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %d", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %d", id)
	}
	return &p, nil
}

// ExistsByName reports whether a product with exactly this name exists.
func (r *ProductRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, productExistsByNameSQL, name).Scan(&exists); err != nil {
		return false, errors.Wrapf(err, "check product %q", name)
	}
	return exists, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity)
	return p, err
}
