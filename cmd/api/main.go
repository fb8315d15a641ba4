package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farebridge_backend/internal/audit"
	"farebridge_backend/internal/events"
	apphttp "farebridge_backend/internal/http"
	"farebridge_backend/internal/http/router"
	"farebridge_backend/internal/markup"
	"farebridge_backend/internal/shopping"
	"farebridge_backend/internal/supplier"
	"farebridge_backend/internal/supplier/sim"
	"farebridge_backend/platform/config"
	"farebridge_backend/platform/db"
	"farebridge_backend/platform/logger"
	"farebridge_backend/platform/redisconn"
	"farebridge_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	var rdb *redis.Client
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		c, err := redisconn.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		rdb = c
		return nil
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer func() { _ = rdb.Close() }()
	log.Info("redis connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Markup policy table
	selector, err := markup.LoadTable(cfg.MarkupTablePath)
	if err != nil {
		log.Error("failed to load markup table", "error", err, "path", cfg.MarkupTablePath)
		panic("failed to load markup table: " + err.Error())
	}
	log.Info("markup table loaded", "path", cfg.MarkupTablePath)

	// Supplier adapter registry
	suppliers := supplier.NewRegistry()
	registerSimulatedSuppliers(suppliers, cfg, log)
	log.Info("supplier registry initialized", "suppliers", suppliers.Names())

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	shoppingModule := shopping.NewModule(pool, rdb, suppliers, selector, eventBus, val, cfg, log)

	// Offer set audit archiver (MinIO), optional
	if cfg.IsMinIOEnabled() {
		store, err := audit.NewMinIOStore(cfg)
		if err != nil {
			log.Error("failed to initialize audit store", "error", err)
			panic("failed to initialize audit store: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure audit bucket", 5, 2*time.Second, func() error {
			return store.EnsureBucket(ctx)
		}); err != nil {
			log.Error("failed to ensure audit bucket exists", "error", err)
			panic("failed to ensure audit bucket exists: " + err.Error())
		}
		archiver := audit.NewArchiver(store, shoppingModule.Service(), log)
		archiver.Subscribe(eventBus)
		log.Info("offer audit archiver initialized", "bucket", cfg.MinioBucketOfferAudit)
	} else {
		log.Warn("MinIO not configured; offer audit archiving disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: []apphttp.HealthChecker{
			pool,
			redisconn.Pinger{Client: rdb},
		},
		EventBus: eventBus,
		Modules: []apphttp.Module{
			shoppingModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// registerSimulatedSuppliers installs the configured simulator adapters,
// wrapped with per-supplier rate limiting.
func registerSimulatedSuppliers(registry *supplier.Registry, cfg *config.Config, log *logger.Logger) {
	names := cfg.GetSimulatedSuppliers()
	if len(names) == 0 {
		names = sim.DefaultPersonaNames()
	}

	limit := rate.Limit(cfg.GetSupplierRateLimit())
	burst := cfg.GetSupplierRateBurst()

	for _, name := range names {
		persona, ok := sim.PersonaByName(name)
		if !ok {
			log.Warn("unknown simulated supplier, skipping", "supplier", name)
			continue
		}
		adapter := supplier.Adapter(sim.New(name, persona, cfg.GetSimulatedSeed()))
		if limit > 0 {
			adapter = supplier.NewRateLimitedAdapter(adapter, limit, burst)
		}
		registry.Register(adapter)
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
