//go:build integration

package postgres

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go/modules/compose"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/sklad/internal/domain/export"
	"github.com/xenking/sklad/internal/domain/order"
	"github.com/xenking/sklad/internal/domain/product"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dc, err := tc.NewDockerCompose(filepath.Join("testdata", "docker-compose.yml"))
	if err != nil {
		log.Fatalf("compose init: %v", err)
	}
	defer func() {
		if err := dc.Down(context.Background(), tc.RemoveOrphans(true), tc.RemoveVolumes(true)); err != nil {
			log.Printf("compose down: %v", err)
		}
	}()

	err = dc.
		WaitForService("postgres", wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute)).
		Up(ctx, tc.Wait(true))
	if err != nil {
		log.Printf("compose up: %v", err)
		return 1
	}

	pg, err := dc.ServiceContainer(ctx, "postgres")
	if err != nil {
		log.Printf("postgres container: %v", err)
		return 1
	}
	host, err := pg.Host(ctx)
	if err != nil {
		log.Printf("host: %v", err)
		return 1
	}
	port, err := pg.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Printf("mapped port: %v", err)
		return 1
	}

	dsn := fmt.Sprintf("postgres://sklad:sklad@%s:%s/sklad?sslmode=disable", host, port.Port())
	testPool, err = NewPool(ctx, dsn)
	if err != nil {
		log.Printf("pool: %v", err)
		return 1
	}
	defer testPool.Close()

	if err := RunMigrations(ctx, testPool); err != nil {
		log.Printf("migrations: %v", err)
		return 1
	}
	// Schema must be re-runnable.
	if err := RunMigrations(ctx, testPool); err != nil {
		log.Printf("second migrations run: %v", err)
		return 1
	}

	return m.Run()
}

// resetDB empties all tables and restarts id sequences.
func resetDB(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE order_line_items, orders, products RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func addProduct(t *testing.T, name, price string, qty int) int64 {
	t.Helper()
	id, err := NewProductRepository(testPool).Create(context.Background(), product.NewProduct{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	})
	require.NoError(t, err)
	return id
}

func TestProductRepository(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewProductRepository(testPool)

	id1 := addProduct(t, "Widget", "9.99", 10)
	id2 := addProduct(t, "Gadget", "0", 0)
	assert.Less(t, id1, id2)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Widget", list[0].Name)
	assert.True(t, decimal.RequireFromString("9.99").Equal(list[0].Price))
	assert.Equal(t, 10, list[0].Quantity)
	assert.Equal(t, "Gadget", list[1].Name)

	p, err := repo.GetByID(ctx, id2)
	require.NoError(t, err)
	assert.Equal(t, id2, p.ID)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, product.ErrNotFound)

	exists, err := repo.ExistsByName(ctx, "Widget")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsByName(ctx, "Nothing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProductRepository_PriceRoundTrips(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	svc := product.NewService(NewProductRepository(testPool))

	for _, price := range []string{"9999999999.99", "0.05", "0"} {
		np, err := product.ParseNew("Screw "+price, price, "1")
		require.NoError(t, err)
		id, err := svc.Add(ctx, np)
		require.NoError(t, err)

		p, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, np.Price.Equal(p.Price), "stored %s, got %s", price, p.Price)
	}

	_, err := product.ParseNew("Screw", "0.005", "1")
	require.Error(t, err)
}

func TestProductRepository_SchemaRejectsNegativeStock(t *testing.T) {
	resetDB(t)
	_, err := NewProductRepository(testPool).Create(context.Background(), product.NewProduct{
		Name:     "Broken",
		Price:    decimal.NewFromInt(1),
		Quantity: -1,
	})
	require.Error(t, err)
}

func TestOrderRepository_CreatedAtStoredAsText(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 10, 30, 15, 0, time.UTC)

	o, err := NewOrderRepository(testPool).Create(ctx, created)
	require.NoError(t, err)

	var raw string
	require.NoError(t, testPool.QueryRow(ctx, `SELECT created_at FROM orders WHERE id = $1`, o.ID).Scan(&raw))
	assert.Equal(t, "2024-05-01 10:30:15", raw)
}

func TestOrderRepository_AddLineItemIsAtomic(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(testPool)
	pid := addProduct(t, "Widget", "9.99", 5)

	o, err := repo.Create(ctx, time.Now())
	require.NoError(t, err)

	item, err := repo.AddLineItem(ctx, o.ID, order.LineItemInput{ProductID: pid, Quantity: 3})
	require.NoError(t, err)
	assert.NotZero(t, item.ID)

	_, err = repo.AddLineItem(ctx, o.ID, order.LineItemInput{ProductID: pid, Quantity: 3})
	var stockErr *order.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)

	_, err = repo.AddLineItem(ctx, o.ID, order.LineItemInput{ProductID: 404, Quantity: 1})
	require.ErrorIs(t, err, product.ErrNotFound)

	// Unknown order violates the foreign key after the stock check passed:
	// the transaction must leave stock untouched.
	_, err = repo.AddLineItem(ctx, o.ID+100, order.LineItemInput{ProductID: pid, Quantity: 1})
	require.Error(t, err)

	p, err := NewProductRepository(testPool).GetByID(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Quantity)

	var count int
	require.NoError(t, testPool.QueryRow(ctx, `SELECT count(*) FROM order_line_items`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestOrderRepository_ConcurrentAddsNeverOversell(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(testPool)
	pid := addProduct(t, "Widget", "1", 10)
	o, err := repo.Create(ctx, time.Now())
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AddLineItem(ctx, o.ID, order.LineItemInput{ProductID: pid, Quantity: 1}); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	p, err := NewProductRepository(testPool).GetByID(ctx, pid)
	require.NoError(t, err)
	assert.Zero(t, p.Quantity)
}

func TestScenario(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	products := product.NewService(NewProductRepository(testPool))
	orders := order.NewService(NewOrderRepository(testPool))
	exporter := export.NewExporter(t.TempDir(), NewOrderRepository(testPool))
	sess := order.NewSession()

	np, err := product.ParseNew("Widget", "9.99", "10")
	require.NoError(t, err)
	pid, err := products.Add(ctx, np)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pid)

	o, err := orders.CreateOrder(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, int64(1), o.ID)

	_, err = orders.AddLineItem(ctx, sess, order.LineItemInput{ProductID: pid, Quantity: 4})
	require.NoError(t, err)

	items, err := orders.ListActiveItems(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, []order.ItemView{{ProductName: "Widget", Quantity: 4}}, items)

	p, err := products.Get(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, 6, p.Quantity)

	path, err := exporter.ExportActiveOrder(ctx, sess)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Objednávka ID: 1\n================================\nWidget - 4 ks\n", string(data))
}
