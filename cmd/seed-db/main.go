package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/sklad/internal/domain/product"
	"github.com/xenking/sklad/internal/storage/postgres"
)

type productJSON struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	lg, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		lg.Fatal("Database URL is required: set --database-url or DATABASE_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = zctx.Base(ctx, lg)

	if err := run(ctx, databaseURL, productsFile); err != nil {
		lg.Fatal("Seed failed", zap.Error(err))
	}
	lg.Info("Seed completed")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	lg := zctx.From(ctx)
	lg.Info("Connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	products, err := readProducts(productsFile)
	if err != nil {
		return err
	}
	lg.Info("Seeding products", zap.Int("count", len(products)), zap.String("path", productsFile))

	repo := postgres.NewProductRepository(pool)
	added, err := seedProducts(ctx, repo, product.NewService(repo), products)
	if err != nil {
		return errors.Wrap(err, "seed products")
	}
	lg.Info("Products seeded", zap.Int("added", added), zap.Int("skipped", len(products)-added))
	return nil
}

func readProducts(path string) ([]product.NewProduct, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read products file")
	}

	var raw []productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse products JSON")
	}

	out := make([]product.NewProduct, 0, len(raw))
	for _, p := range raw {
		out = append(out, product.NewProduct{Name: p.Name, Price: p.Price, Quantity: p.Quantity})
	}
	return out, nil
}

// seedProducts adds products whose name is not stored yet, so reruns do not
// duplicate the catalogue.
func seedProducts(ctx context.Context, repo product.Repository, svc *product.Service, products []product.NewProduct) (int, error) {
	var added int
	for _, p := range products {
		exists, err := repo.ExistsByName(ctx, p.Name)
		if err != nil {
			return added, errors.Wrapf(err, "lookup %q", p.Name)
		}
		if exists {
			zctx.From(ctx).Debug("Product exists, skipping", zap.String("name", p.Name))
			continue
		}
		if _, err := svc.Add(ctx, p); err != nil {
			return added, errors.Wrapf(err, "add %q", p.Name)
		}
		added++
	}
	return added, nil
}
