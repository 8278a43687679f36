package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/warungkita/api/internal/clients"
	"github.com/warungkita/api/internal/handlers"
	"github.com/warungkita/api/internal/platform/config"
	"github.com/warungkita/api/internal/platform/idempotency"
	"github.com/warungkita/api/internal/platform/metrics"
	"github.com/warungkita/api/internal/platform/observability"
	"github.com/warungkita/api/internal/platform/sessionstore"
	"github.com/warungkita/api/internal/services"
)

const storeTimezone = "Asia/Jakarta"

func main() {
	startedAt := time.Now()

	logger, err := observability.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			logger.Fatal("invalid configuration", zap.Strings("fields", invalid.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	location, err := time.LoadLocation(storeTimezone)
	if err != nil {
		logger.Fatal("failed to load store timezone", zap.Error(err))
	}
	clock := func() time.Time { return time.Now().In(location) }

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close error", zap.Error(err))
		}
	}()

	sessions := sessionstore.NewStore(redisClient, sessionstore.WithTTL(cfg.Sessions.TTL))
	commerce := clients.NewClient(cfg.Collaborator.BaseURL)

	idempotencyStore := idempotency.NewRedisStore(redisClient)
	idempotencyMiddleware := idempotency.Middleware(
		idempotencyStore,
		idempotency.WithHeader(cfg.Idempotency.Header),
		idempotency.WithTTL(cfg.Idempotency.TTL),
		idempotency.WithMethods(http.MethodPost),
		idempotency.WithLogger(observability.NewPrintfAdapter(logger.Named("idempotency"))),
	)

	settingsService, err := services.NewSettingsService(services.SettingsServiceDeps{
		API:    commerce,
		Clock:  clock,
		MaxAge: cfg.Collaborator.SettingsMaxAge,
		Logger: observability.EventLogger(logger.Named("settings")),
	})
	if err != nil {
		logger.Fatal("failed to initialise settings service", zap.Error(err))
	}

	voucherService, err := services.NewVoucherService(services.VoucherServiceDeps{
		API:      commerce,
		Sessions: sessions,
		Logger:   observability.EventLogger(logger.Named("vouchers")),
	})
	if err != nil {
		logger.Fatal("failed to initialise voucher service", zap.Error(err))
	}

	zoneService, err := services.NewZoneService(services.ZoneServiceDeps{
		API:      commerce,
		Sessions: sessions,
		Logger:   observability.EventLogger(logger.Named("zones")),
	})
	if err != nil {
		logger.Fatal("failed to initialise zone service", zap.Error(err))
	}

	preOrderService, err := services.NewPreOrderService(services.PreOrderServiceDeps{
		Settings: settingsService,
		Clock:    clock,
		Location: location,
	})
	if err != nil {
		logger.Fatal("failed to initialise pre-order service", zap.Error(err))
	}

	checkoutService, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		API:      commerce,
		Sessions: sessions,
		Settings: settingsService,
		Clock:    clock,
		Location: location,
		Logger:   observability.EventLogger(logger.Named("checkout")),
	})
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}

	serverMetrics := metrics.NewServerMetrics(prometheus.DefaultRegisterer)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(),
		observability.SessionMiddleware(),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
		serverMetrics.Middleware(),
	}

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(buildInfoFromEnv(startedAt)),
		handlers.WithReadinessCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}),
	)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithMetricsHandler(metrics.Handler()),
		handlers.WithCartRoutes(handlers.NewCartHandlers(sessions).Routes),
		handlers.WithCheckoutDataRoutes(handlers.NewCheckoutDataHandlers(sessions).Routes),
		handlers.WithCheckoutRoutes(handlers.NewCheckoutHandlers(
			checkoutService,
			handlers.WithSubmitMiddleware(idempotencyMiddleware),
		).Routes),
		handlers.WithVoucherRoutes(handlers.NewVoucherHandlers(voucherService).Routes),
		handlers.WithZoneRoutes(handlers.NewZoneHandlers(zoneService).Routes),
		handlers.WithPreOrderRoutes(handlers.NewPreOrderHandlers(preOrderService).Routes),
		handlers.WithSettingsRoutes(handlers.NewSettingsHandlers(settingsService).Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("warungkita api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildInfoFromEnv(started time.Time) handlers.BuildInfo {
	version := strings.TrimSpace(os.Getenv("API_BUILD_VERSION"))
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(os.Getenv("API_BUILD_COMMIT_SHA"))
	if commit == "" {
		commit = "unknown"
	}
	environment := strings.TrimSpace(os.Getenv("API_ENVIRONMENT"))
	if environment == "" {
		environment = "local"
	}
	return handlers.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: environment,
		StartedAt:   started,
	}
}
