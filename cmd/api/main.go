package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/genius-car/internal/api/http"
	"github.com/spec-kit/genius-car/internal/api/http/handlers"
	"github.com/spec-kit/genius-car/internal/auth"
	"github.com/spec-kit/genius-car/internal/config"
	"github.com/spec-kit/genius-car/internal/events"
	"github.com/spec-kit/genius-car/internal/observability"
	"github.com/spec-kit/genius-car/internal/persistence"
	"github.com/spec-kit/genius-car/internal/repository"
	"github.com/spec-kit/genius-car/internal/service"
	"github.com/spec-kit/genius-car/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("ACCESS_TOKEN_SECRET is empty; token issuance fails and every protected request is rejected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, deps, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	if cfg.Store.SeedFile != "" && store.Seeder != nil {
		seedServices(ctx, store.Seeder, cfg.Store.SeedFile, logger)
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger)

	authService := service.NewAuthService(*cfg)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())
	issueGuard := auth.NewIssueGuard(cfg.Auth.IssueKeyHash)
	if issueGuard.Enabled() {
		logger.Info("token issuance requires " + auth.IssueKeyHeader)
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:          cfg.App.RequestTimeout(),
		CORSAllowOrigins: cfg.App.CORSAllowOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Tokens:         handlers.NewTokenHandler(authService),
		Services:       handlers.NewServicesHandler(service.NewCatalogService(store.Services)),
		Orders:         handlers.NewOrdersHandler(service.NewOrderService(store.Orders, dispatcher, logger)),
		AuthMiddleware: authMiddleware,
		IssueGuard:     issueGuard,
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// openStore connects the configured backend. Connection problems are logged
// and never stop the listener from starting; affected routes fail per request.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, map[string]handlers.Pinger, func()) {
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		store := repository.NewRedisStore(rdb.Client, cfg.Redis.KeyPrefix)
		return store, map[string]handlers.Pinger{"redis": rdb}, rdb.Close
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), nil, func() {}
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to set up postgres", zap.Error(err))
		pg = &persistence.Postgres{}
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
		}
	}
	return repository.NewPostgresStore(pg.PoolHandle()), map[string]handlers.Pinger{"postgres": pg}, pg.Close
}

func seedServices(ctx context.Context, seeder repository.ServiceSeeder, path string, logger *zap.Logger) {
	services, err := repository.LoadServicesFile(path)
	if err != nil {
		logger.Error("failed to load service seed", zap.String("file", path), zap.Error(err))
		return
	}
	if err := seeder.SeedServices(ctx, services); err != nil {
		logger.Error("failed to seed services", zap.Error(err))
		return
	}
	logger.Info("services seeded", zap.Int("count", len(services)))
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
