package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	collectionapp "github.com/erp/backoffice/internal/application/collection"
	deliveryapp "github.com/erp/backoffice/internal/application/delivery"
	"github.com/erp/backoffice/internal/domain/delivery"
	"github.com/erp/backoffice/internal/domain/receivable"
	"github.com/erp/backoffice/internal/domain/shared/valueobject"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/backoffice"
	"github.com/erp/backoffice/internal/infrastructure/cache"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/erp/backoffice/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting back-office gateway",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		TracesEnabled:     cfg.Telemetry.Enabled,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
		Profiling: telemetry.ProfilingConfig{
			Enabled:           cfg.Telemetry.ProfilingEnabled,
			ServerAddress:     cfg.Telemetry.ProfilingServerAddress,
			BasicAuthUser:     cfg.Telemetry.ProfilingUser,
			BasicAuthPassword: cfg.Telemetry.ProfilingPassword,
		},
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = logger.WithCore(log, providers.LogCore(log.Core()))

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  providers.Meter("backoffice.business"),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}

	// In-flight guard and session store share one Redis connection when
	// Redis is enabled and reachable
	guardFactory := cache.NewGuardFactory(cfg.Redis, cache.WithLogger(log))
	guard, err := guardFactory.CreateGuard(ctx)
	if err != nil {
		log.Fatal("Failed to create in-flight guard", zap.Error(err))
	}

	var sessionStore auth.SessionStore = auth.NewInMemorySessionStore()
	if client := guardFactory.RedisClient(); client != nil {
		sessionStore = auth.NewRedisSessionStore(client)
	}

	sessions := auth.NewSessionManager(auth.NewTokenParser(cfg.Session.JWTSecret), sessionStore, cfg.Session.TTL, log)

	client, err := backoffice.NewClient(backoffice.Config{
		BaseURL:         cfg.Backend.BaseURL,
		Timeout:         cfg.Backend.Timeout,
		MaxResponseSize: cfg.Backend.MaxResponseSize,
	},
		backoffice.WithLogger(log),
		backoffice.WithMetrics(businessMetrics),
		backoffice.WithUnauthorizedHandler(sessions.HandleUnauthorized),
	)
	if err != nil {
		log.Fatal("Failed to create back-office client", zap.Error(err))
	}

	collectionDrafts := cache.NewWorkspace[*receivable.CollectionDraft](cfg.Drafts.IdleTTL,
		cache.WithMaxPerSession[*receivable.CollectionDraft](cfg.Drafts.MaxPerSession),
		cache.WithEvictionHandler(func(id uuid.UUID, _ *receivable.CollectionDraft) {
			log.Info("Idle collection draft evicted", zap.String("draft_id", id.String()))
		}),
	)
	batchDrafts := cache.NewWorkspace[*delivery.BatchSaleDraft](cfg.Drafts.IdleTTL,
		cache.WithMaxPerSession[*delivery.BatchSaleDraft](cfg.Drafts.MaxPerSession),
		cache.WithEvictionHandler(func(id uuid.UUID, _ *delivery.BatchSaleDraft) {
			log.Info("Idle batch draft evicted", zap.String("draft_id", id.String()))
		}),
	)
	sessions.OnClear(func(ctx context.Context, sessionID string) {
		dropped := collectionDrafts.RemoveOwner(sessionID) + batchDrafts.RemoveOwner(sessionID)
		if dropped > 0 {
			logger.L(ctx).Info("Drafts dropped with session",
				zap.String("session_id", sessionID),
				zap.Int("count", dropped),
			)
		}
	})

	paymentService := collectionapp.NewPaymentService(collectionapp.PaymentServiceConfig{
		Gateway:  client,
		Drafts:   collectionDrafts,
		Guard:    guard,
		Rules:    receivable.PaymentRules{MinTotal: valueobject.Cents(cfg.Collection.MinTotalCents)},
		Location: cfg.Collection.Location(),
		LockTTL:  cfg.Drafts.SubmitLockTTL,
		Metrics:  businessMetrics,
	})
	batchSaleService := deliveryapp.NewBatchSaleService(deliveryapp.BatchSaleServiceConfig{
		Gateway:  client,
		Drafts:   batchDrafts,
		Guard:    guard,
		Policy:   delivery.CreditPolicy{ClampToSubtotal: cfg.Delivery.ClampCreditToSubtotal},
		Location: cfg.Collection.Location(),
		LockTTL:  cfg.Drafts.SubmitLockTTL,
		Metrics:  businessMetrics,
	})

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTSEnabled = cfg.App.Env == "production"

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(providers),
		middleware.SecureWithConfig(securityConfig),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version)
	if redisClient := guardFactory.RedisClient(); redisClient != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(middleware.SessionAuth(sessions), middleware.TracingAttributeInjector()),
	)
	r.Register(router.API(router.Handlers{
		Collection: handler.NewCollectionHandler(paymentService),
		Delivery:   handler.NewDeliveryHandler(batchSaleService),
		Session:    handler.NewSessionHandler(sessions),
		System:     systemHandler,
	})...)
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	collectionDrafts.Close()
	batchDrafts.Close()
	if err := guard.Close(); err != nil {
		log.Warn("Failed to close in-flight guard", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush telemetry", zap.Error(err))
	}
}
