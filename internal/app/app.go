package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/auth"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/config"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/event"
	handler "github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/handler/http"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/notification"
	paymock "github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/payment/mock"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository/memory"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository/postgres"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/repository/postgres/migrations"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/service"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage"
	storemem "github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage/memory"
	redisstore "github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage/redis"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/database"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/health"
	pkgkafka "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/kafka"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/middleware"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/tracing"
)

// ServiceName identifies the mock backend in logs, metrics and traces.
const ServiceName = "storefront"

// closer is a resource released on shutdown, in reverse order of creation.
type closer struct {
	name string
	fn   func() error
}

// App wires together all dependencies and runs the storefront mock backend.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	consumers      []*pkgkafka.Consumer
	tracerShutdown func(context.Context) error
	closers        []closer
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.closeAll()
		}
	}()

	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing(ServiceName))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	healthHandler := health.NewHandler()
	seed := memory.Seed(time.Now())

	// Catalog.
	var (
		products   repository.ProductRepository   = memory.NewProductRepository(seed.Products)
		categories repository.CategoryRepository = memory.NewCategoryRepository(seed.Categories)
	)
	if cfg.CatalogBackend == config.BackendPostgres {
		pool, err := a.openPostgres(ctx)
		if err != nil {
			return nil, err
		}
		products = postgres.NewProductRepository(pool)
		categories = postgres.NewCategoryRepository(pool)
		healthHandler.Register("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
	}

	// Session cart/wishlist storage.
	var (
		store storage.Storage = storemem.New()
		rdb   *redis.Client
	)
	if cfg.StorageBackend == config.BackendRedis {
		rdb, err = a.openRedis(ctx)
		if err != nil {
			return nil, err
		}
		rs := redisstore.New(rdb, cfg.SessionTTL)
		store = rs
		healthHandler.Register("redis", rs.Ping)
	}

	// Events.
	pub, err := a.openPublisher(ctx, healthHandler)
	if err != nil {
		return nil, err
	}
	producer := event.NewProducer(pub, logger)

	// Services.
	users := memory.NewUserRepository()
	transactions := memory.NewTransactionRepository()
	orders := memory.NewOrderRepository()
	discounts := memory.NewDiscountRepository(seed.Codes)
	notices := memory.NewNoticeRepository(seed.Notices)
	suppliers := memory.NewSupplierRepository(seed.Suppliers)
	inventory := memory.NewInventoryRepository()

	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET not set, using a random secret; tokens will not survive restarts")
	}
	tokens := auth.NewTokenManager(secret, cfg.TokenTTL)

	authSvc := service.NewAuthService(users, tokens, logger).WithCost(cfg.BcryptCost)
	if cfg.SeedAccounts {
		if err := authSvc.SeedAccounts(ctx, service.DefaultAccounts); err != nil {
			return nil, fmt.Errorf("seed accounts: %w", err)
		}
		logger.Info("development accounts seeded", slog.Int("count", len(service.DefaultAccounts)))
	}

	catalog := service.NewCatalogService(products, categories)
	discountSvc := service.NewDiscountService(discounts, logger)
	provider := paymock.NewProvider(
		paymock.WithChargeLimit(cfg.PaymentChargeLimit),
		paymock.WithLatency(cfg.PaymentLatency),
	)
	checkout := service.NewCheckoutService(service.CheckoutRepos{
		Products:     products,
		Transactions: transactions,
		Orders:       orders,
		Inventory:    inventory,
	}, discountSvc, provider, producer, cfg.GatewayURL(), logger)

	svcs := handler.Services{
		Auth:      authSvc,
		Catalog:   catalog,
		Discounts: discountSvc,
		Notices:   service.NewNoticeService(notices),
		Checkout:  checkout,
		Admin: service.NewAdminService(service.AdminRepos{
			Products:     products,
			Categories:   categories,
			Suppliers:    suppliers,
			Users:        users,
			Orders:       orders,
			Transactions: transactions,
			Discounts:    discounts,
			Notices:      notices,
			Inventory:    inventory,
		}),
		Sessions: service.NewSessionService(catalog, store, producer, logger,
			service.WithIdleTTL(cfg.SessionIdleTTL)),
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(svcs, healthHandler, logger, handler.Options{
		Tokens:        tokens.Validator(),
		CORS:          cors,
		PprofCIDRs:    cfg.PprofAllowedCIDRs,
		CatalogMaxAge: cfg.CatalogCacheSeconds,
		AuthRateLimit: middleware.RateLimitConfig{
			PerMinute: cfg.AuthRatePerMinute,
			Burst:     cfg.AuthRateBurst,
		},
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.NotificationsEnabled {
		a.openNotifier(rdb)
	}

	ok = true
	return a, nil
}

func (a *App) openPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	pgCfg := a.cfg.Postgres()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.closers = append(a.closers, closer{"postgres", func() error { pool.Close(); return nil }})
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", pgCfg.Host),
		slog.String("db", pgCfg.DBName),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := database.RegisterPoolMetrics(pool, ServiceName); err != nil {
		a.logger.Warn("postgres pool metrics unavailable", slog.String("error", err.Error()))
	}
	database.SetSlowQueryLogging(time.Duration(a.cfg.SlowQueryThresholdMs)*time.Millisecond, a.logger)
	return pool, nil
}

func (a *App) openRedis(ctx context.Context) (*redis.Client, error) {
	redisCfg := a.cfg.Redis()
	rdb, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.closers = append(a.closers, closer{"redis", rdb.Close})
	a.logger.Info("connected to Redis",
		slog.String("addr", redisCfg.Addr()),
		slog.Int("db", redisCfg.DB),
	)
	return rdb, nil
}

// openPublisher returns nil when EVENT_BROKER is none, which disables the
// event producer.
func (a *App) openPublisher(ctx context.Context, healthHandler *health.Handler) (event.Publisher, error) {
	switch a.cfg.EventBroker {
	case config.BrokerKafka:
		if err := pkgkafka.PingBrokers(ctx, a.cfg.KafkaBrokers); err != nil {
			a.logger.Warn("kafka brokers unreachable at startup", slog.String("error", err.Error()))
		}
		p := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(a.cfg.KafkaBrokers), a.logger)
		a.closers = append(a.closers, closer{"kafka producer", p.Close})
		healthHandler.Register("kafka", p.Ping)
		a.logger.Info("kafka producer initialized", slog.Any("brokers", a.cfg.KafkaBrokers))
		return p, nil
	case config.BrokerRabbitMQ:
		p, err := event.DialRabbitMQ(a.cfg.RabbitMQURL, a.cfg.RabbitMQExchange, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		a.closers = append(a.closers, closer{"rabbitmq", p.Close})
		healthHandler.Register("rabbitmq", p.Ping)
		a.logger.Info("rabbitmq publisher initialized", slog.String("exchange", a.cfg.RabbitMQExchange))
		return p, nil
	default:
		a.logger.Info("event broker disabled")
		return nil, nil
	}
}

// openNotifier shares deduplication through rdb when Redis is configured.
func (a *App) openNotifier(rdb *redis.Client) {
	dlq := pkgkafka.NewDLQProducer(a.cfg.KafkaBrokers, a.logger)
	a.closers = append(a.closers, closer{"kafka dlq", dlq.Close})

	h := notification.NewHandler(notification.NewLogSender(a.logger), a.logger)
	var dedup redis.Cmdable
	if rdb != nil {
		dedup = rdb
	}
	a.consumers = notification.NewConsumers(a.cfg.KafkaBrokers, h, notification.DedupStore(dedup), dlq, a.logger)
	a.logger.Info("order notifications enabled", slog.Int("consumers", len(a.consumers)))
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	consumerCtx, stopConsumers := context.WithCancel(ctx)
	defer stopConsumers()

	var wg sync.WaitGroup
	for _, c := range a.consumers {
		wg.Add(1)
		go func(c *pkgkafka.Consumer) {
			defer wg.Done()
			if err := c.Start(consumerCtx); err != nil {
				a.logger.Error("kafka consumer stopped", slog.String("error", err.Error()))
			}
		}(c)
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("catalog", a.cfg.CatalogBackend),
			slog.String("storage", a.cfg.StorageBackend),
			slog.String("broker", a.cfg.EventBroker),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	stopConsumers()
	wg.Wait()

	if err := a.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeAll()

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeAll() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(); err != nil {
			a.logger.Error(c.name+" close error", slog.String("error", err.Error()))
		}
	}
	a.closers = nil
}

// Handler exposes the HTTP handler for in-process tests.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}
