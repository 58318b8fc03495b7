// Package app wires configuration, storage, domain services and the HTTP
// server together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/sklad/internal/domain/export"
	"github.com/xenking/sklad/internal/domain/order"
	"github.com/xenking/sklad/internal/domain/product"
	"github.com/xenking/sklad/internal/handler"
	"github.com/xenking/sklad/internal/storage/memory"
	"github.com/xenking/sklad/internal/storage/postgres"
	"github.com/xenking/sklad/pkg/health"
	"github.com/xenking/sklad/pkg/httpmiddleware"
)

// Store is the storage backend behind the services.
type Store struct {
	Products product.Repository
	Orders   order.Repository
	Pinger   health.Pinger
	Close    func()
}

// OpenStore opens the backend selected by cfg.Storage. PostgreSQL gets its
// schema applied before use.
func OpenStore(ctx context.Context, cfg *Config) (*Store, error) {
	switch cfg.Storage {
	case StorageMemory:
		s := memory.New()
		return &Store{
			Products: s.Products(),
			Orders:   s.Orders(),
			Pinger:   s,
			Close:    func() {},
		}, nil
	case StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		return &Store{
			Products: postgres.NewProductRepository(pool),
			Orders:   postgres.NewOrderRepository(pool),
			Pinger:   pool,
			Close:    pool.Close,
		}, nil
	default:
		return nil, errors.Errorf("unknown storage %q", cfg.Storage)
	}
}

// NewServer builds the API and health routes over st wrapped in the
// middleware chain. The returned Health is not ready yet.
func NewServer(lg *zap.Logger, m httpmiddleware.TelemetryProvider, cfg *Config, st *Store) (http.Handler, *health.Health, error) {
	metrics, err := handler.NewMetrics(m.MeterProvider())
	if err != nil {
		return nil, nil, errors.Wrap(err, "create metrics")
	}

	healthSvc := health.New()
	healthSvc.AddReadinessCheck(cfg.Storage, 5*time.Second, health.PingCheck(st.Pinger))
	healthSvc.AddReadinessCheck("export_dir", time.Second, func(context.Context) error {
		return export.CheckWritable(cfg.ExportDir)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddLivenessCheck("gc_pause", time.Second, health.GCMaxPauseCheck(time.Second))

	h := handler.NewHandler(
		product.NewService(st.Products),
		order.NewService(st.Orders),
		export.NewExporter(cfg.ExportDir, st.Orders),
		order.NewSession(),
		metrics,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	routeFinder := httpmiddleware.MakeRouteFinder(mux)
	return httpmiddleware.Wrap(mux,
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Recovery(),
		httpmiddleware.Instrument("sklad-api", routeFinder, m),
		httpmiddleware.LogRequests(routeFinder),
		httpmiddleware.Labeler(routeFinder),
	), healthSvc, nil
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage),
		zap.String("export_dir", cfg.ExportDir),
	)

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	root, healthSvc, err := NewServer(zctx.From(ctx), m, cfg, st)
	if err != nil {
		return err
	}

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           root,
	}
	healthSvc.SetReady(true)

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
