package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"couponmap.backend/internal/config"
	"couponmap.backend/internal/infrastructure/datasources/postgres"
	"couponmap.backend/internal/infrastructure/gateway"
	"couponmap.backend/internal/infrastructure/jobs"
	"couponmap.backend/internal/infrastructure/messaging"
	"couponmap.backend/internal/infrastructure/models"
	"couponmap.backend/internal/infrastructure/repositories"
	"couponmap.backend/internal/infrastructure/sideeffects"
	"couponmap.backend/internal/interfaces/http/handlers"
	"couponmap.backend/internal/interfaces/http/middleware"
	"couponmap.backend/internal/usecases"
	"couponmap.backend/pkg/jwt"
	"couponmap.backend/pkg/logger"
	"couponmap.backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
		sqlDB, err := postgres.NewConnection(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.OpenGorm(sqlDB)
	}
	migrateDB = models.AutoMigrate
	runServer = func(ctx context.Context, srv *http.Server) error {
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}
	signalContext = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	}
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	bootCtx := context.Background()
	logger.Info(bootCtx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(bootCtx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redis.Close()
	logger.Info(bootCtx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if cfg.Server.AutoMigrate {
		if err := migrateDB(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info(bootCtx, "Database schema migrated")
	}

	rewards, err := usecases.LoadRewardTable(cfg.Game.RewardTableFile)
	if err != nil {
		return fmt.Errorf("failed to load reward table: %w", err)
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Repositories
	uow := repositories.NewUnitOfWork(db)
	userRepo := repositories.NewUserRepository(db)
	merchantRepo := repositories.NewMerchantRepository(db)
	storeRepo := repositories.NewStoreRepository(db)
	productRepo := repositories.NewProductRepository(db)
	couponRepo := repositories.NewCouponRepository(db)
	issueRepo := repositories.NewCouponIssueRepository(db)
	sessionRepo := repositories.NewTableSessionRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	kitchenRepo := repositories.NewKitchenOrderRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	packageRepo := repositories.NewTopupPackageRepository(db)
	gameRepo := repositories.NewGameSessionRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	eventRepo := repositories.NewTransactionEventRepository(db)
	statsRepo := repositories.NewStatsRepository(db)
	showRepo := repositories.NewEventRepository(db)
	ticketTypeRepo := repositories.NewTicketTypeRepository(db)
	ticketRepo := repositories.NewTicketRepository(db)
	settlementRepo := repositories.NewSettlementRepository(db)

	// Side effects
	ctx, cancel := signalContext()
	defer cancel()

	analytics, notifier := newPublishers(cfg)
	defer analytics.Close()
	defer notifier.Close()

	// stopped before the publishers close so queued tasks can still publish
	runner := sideeffects.NewRunner(cfg.SideEffects, registry)
	runner.Start(ctx)
	defer runner.Stop()

	effects := usecases.NewSideEffects(runner, analytics, notifier, customerRepo, eventRepo)

	// Usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService)
	walletUsecase := usecases.NewWalletUsecase(uow, walletRepo, cfg.Wallet.AllowNegative)
	storeUsecase := usecases.NewStoreUsecase(storeRepo, productRepo, merchantRepo)
	couponUsecase := usecases.NewCouponUsecase(uow, couponRepo, issueRepo, storeRepo, effects)
	orderUsecase := usecases.NewOrderUsecase(uow, sessionRepo, cartRepo, kitchenRepo, storeRepo, productRepo, couponRepo, issueRepo, eventRepo, effects)
	kitchenUsecase := usecases.NewKitchenUsecase(uow, kitchenRepo, cartRepo, storeRepo, effects)
	paymentUsecase := usecases.NewPaymentUsecase(uow, paymentRepo, packageRepo, merchantRepo, eventRepo, walletUsecase, gateway.NewClient(cfg.PaymentGateway), effects)
	gameUsecase := usecases.NewGameUsecase(uow, gameRepo, merchantRepo, couponRepo, couponUsecase, walletUsecase, effects, rewards)
	merchantUsecase := usecases.NewMerchantUsecase(uow, merchantRepo, userRepo, storeRepo, walletRepo, statsRepo)
	ticketUsecase := usecases.NewTicketUsecase(uow, showRepo, ticketTypeRepo, ticketRepo, effects)
	settlementUsecase := usecases.NewSettlementUsecase(uow, settlementRepo, paymentRepo, merchantRepo, cfg.Settlement.FeeRate)

	// Background jobs
	expiryJob := jobs.NewCouponExpiryJob(issueRepo, cfg.Jobs.CouponExpiryInterval)
	go expiryJob.Start(ctx)
	defer expiryJob.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.NewHTTPMetrics(registry).Middleware())

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r)
	registerMetricsRoute(r, registry)
	registerAPIV1Routes(r, routeDeps{
		authHandler:       handlers.NewAuthHandler(authUsecase),
		storeHandler:      handlers.NewStoreHandler(storeUsecase),
		couponHandler:     handlers.NewCouponHandler(couponUsecase),
		orderHandler:      handlers.NewOrderHandler(orderUsecase),
		kitchenHandler:    handlers.NewKitchenHandler(kitchenUsecase),
		walletHandler:     handlers.NewWalletHandler(walletUsecase),
		paymentHandler:    handlers.NewPaymentHandler(paymentUsecase),
		gameHandler:       handlers.NewGameHandler(gameUsecase),
		merchantHandler:   handlers.NewMerchantHandler(merchantUsecase),
		ticketHandler:     handlers.NewTicketHandler(ticketUsecase),
		settlementHandler: handlers.NewSettlementHandler(settlementUsecase),
		authMiddleware:    middleware.AuthMiddleware(jwtService),
		rateLimit:         cfg.RateLimit,
	})

	logger.Info(bootCtx, "Routes registered", zap.Int("count", len(r.Routes())))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info(bootCtx, "CouponMap backend starting", zap.String("port", cfg.Server.Port))

	if err := runServer(ctx, srv); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(bootCtx, "Server stopped")
	return nil
}

type closer interface{ Close() error }

type analyticsPublisher interface {
	usecases.AnalyticsPublisher
	closer
}

type kitchenNotifier interface {
	usecases.KitchenNotifier
	closer
}

// newPublishers picks the broker-backed publishers when enabled, else the
// log-only ones
func newPublishers(cfg *config.Config) (analyticsPublisher, kitchenNotifier) {
	var analytics analyticsPublisher = messaging.LogAnalyticsPublisher{}
	if cfg.Kafka.Enabled {
		analytics = messaging.NewKafkaAnalyticsPublisher(messaging.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
	}

	var kitchen kitchenNotifier = messaging.LogKitchenNotifier{}
	if cfg.RabbitMQ.Enabled {
		kitchen = messaging.NewRabbitKitchenNotifier(cfg.RabbitMQ.URL, cfg.RabbitMQ.KitchenQueue)
	}
	return analytics, kitchen
}
