package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/device-cost-service/internal/api/http"
	"github.com/spec-kit/device-cost-service/internal/api/http/handlers"
	"github.com/spec-kit/device-cost-service/internal/auth"
	"github.com/spec-kit/device-cost-service/internal/config"
	"github.com/spec-kit/device-cost-service/internal/events"
	"github.com/spec-kit/device-cost-service/internal/localstore"
	"github.com/spec-kit/device-cost-service/internal/observability"
	"github.com/spec-kit/device-cost-service/internal/persistence"
	"github.com/spec-kit/device-cost-service/internal/report"
	"github.com/spec-kit/device-cost-service/internal/repository"
	"github.com/spec-kit/device-cost-service/internal/service"
	"github.com/spec-kit/device-cost-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	readiness := map[string]handlers.Pinger{}

	// durable local store: primary and backup tier plus the sqlite mirror
	var primary localstore.Tier = localstore.NewMemoryTier("memory")
	if cfg.Store.PrimaryTier == "redis" {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		readiness["redis"] = redis
		primary = localstore.NewRedisTier("redis", redis.Client, cfg.Store.KeyPrefix)
	}

	var mirror *localstore.Mirror
	if cfg.Store.SecondaryPath != "" {
		secondary := localstore.NewSQLiteSecondary(cfg.Store.SecondaryPath, logger.Named("mirror"))
		defer secondary.Close() //nolint:errcheck
		mirror = localstore.NewMirror(secondary, cfg.Store.MirrorQueueLen, logger.Named("mirror"))
		mirror.Start(ctx)
		defer mirror.Close()
	}

	store := localstore.New(localstore.Options{
		Primary: primary,
		Mirror:  mirror,
		Logger:  logger.Named("localstore"),
	})

	var (
		userRepo    repository.UserRepository
		productRepo repository.ProductRepository
	)
	switch cfg.Store.Mode {
	case config.StoreModeRemote:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		readiness["postgres"] = pg
		userRepo = repository.NewUserRepository(pg.Pool)
		productRepo = repository.NewProductRepository(pg.Pool)
	default:
		userRepo = repository.NewLocalUserRepository(store)
		productRepo = repository.NewLocalProductRepository(store)
	}
	logger.Info("store configured",
		zap.String("mode", string(cfg.Store.Mode)),
		zap.String("primary_tier", primary.Name()),
		zap.Bool("mirror", mirror != nil))

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger.Named("notify"), cfg.Notification), logger.Named("worker"))

	sessions := auth.NewSessionStore(store)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: userRepo,
		Sessions: sessions,
		Logger:   logger,
	})
	productService := service.NewProductService(service.ProductDependencies{
		ProductRepo: productRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Location:    cfg.App.Location(),
	})

	var publisher service.ImagePublisher
	if cfg.Share.Enabled() {
		s3Publisher, err := report.NewS3Publisher(ctx, cfg.Share)
		if err != nil {
			logger.Warn("share publishing disabled", zap.Error(err))
		} else {
			publisher = s3Publisher
		}
	}
	shareService := service.NewShareService(productService, report.NewRenderer(cfg.Share.ImageWidthPixel), publisher, logger)

	if cfg.Advisory.Enabled {
		advisory := service.NewAdvisoryService(productRepo, dispatcher, logger.Named("advisory"))
		scheduler := worker.NewAdvisoryScheduler(advisory, cfg.Advisory.Location(), logger.Named("advisory"))
		if _, err := scheduler.ScheduleDaily(cfg.Advisory.DailyAt); err != nil {
			logger.Fatal("invalid advisory schedule", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness, metrics),
		Users:          handlers.NewUsersHandler(authService),
		Products:       handlers.NewProductsHandler(productService),
		Share:          handlers.NewShareHandler(shareService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), sessions, userRepo),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
