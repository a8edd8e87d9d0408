package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	poolingapp "github.com/craftbridge/backend/internal/application/pooling"
	"github.com/craftbridge/backend/internal/domain/pooling"
	"github.com/craftbridge/backend/internal/infrastructure/auth"
	"github.com/craftbridge/backend/internal/infrastructure/cache"
	"github.com/craftbridge/backend/internal/infrastructure/config"
	"github.com/craftbridge/backend/internal/infrastructure/event"
	"github.com/craftbridge/backend/internal/infrastructure/logger"
	"github.com/craftbridge/backend/internal/infrastructure/persistence"
	"github.com/craftbridge/backend/internal/infrastructure/strategy/weight"
	"github.com/craftbridge/backend/internal/infrastructure/telemetry"
	"github.com/craftbridge/backend/internal/interfaces/http/handler"
	"github.com/craftbridge/backend/internal/interfaces/http/middleware"
	"github.com/craftbridge/backend/internal/interfaces/http/router"
)

//	@title			CraftBridge Backend API
//	@version		1.0
//	@description	Artisan marketplace backend with cluster logistics pooling

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting CraftBridge Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing (no-op provider when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize database connection with zap-backed GORM logging
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.DB.Use(otelgorm.NewPlugin(otelgorm.WithDBName(cfg.Database.DBName))); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}

	// Analytics report cache: Redis when reachable, in-process otherwise
	var analyticsCache poolingapp.AnalyticsCache
	redisCache, err := cache.NewRedisAnalyticsCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory analytics cache", zap.Error(err))
		analyticsCache = cache.NewMemoryAnalyticsCache()
	} else {
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
		analyticsCache = redisCache
		log.Info("Redis analytics cache connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	artisanDirectory := persistence.NewGormArtisanDirectory(db.DB)

	// Domain singletons: rates, hubs, scheduling, weight estimation
	rateCard, err := cfg.Pooling.RateCard()
	if err != nil {
		log.Fatal("Invalid rate card configuration", zap.Error(err))
	}
	hubs, err := cfg.Pooling.HubDirectory()
	if err != nil {
		log.Fatal("Invalid hub directory configuration", zap.Error(err))
	}
	scheduleEstimator, err := pooling.NewScheduleEstimator(pooling.ScheduleConfig{
		PickupsPerDay: cfg.Pooling.PickupsPerDay,
		TransitDays:   cfg.Pooling.TransitDays,
	})
	if err != nil {
		log.Fatal("Invalid schedule configuration", zap.Error(err))
	}
	weightEstimator := weight.NewUnitCountEstimator()

	// Initialize application services
	poolingService, err := poolingapp.NewPoolingService(
		orderRepo,
		shipmentRepo,
		rateCard,
		hubs,
		scheduleEstimator,
		weightEstimator,
		poolingapp.Config{
			WindowDays:     cfg.Pooling.WindowDays,
			MaxClusterSize: cfg.Pooling.MaxClusterSize,
		},
		log,
	)
	if err != nil {
		log.Fatal("Invalid pooling configuration", zap.Error(err))
	}

	analyticsService, err := poolingapp.NewAnalyticsService(
		orderRepo,
		shipmentRepo,
		artisanDirectory,
		hubs,
		pooling.AnalyticsConfig{
			WindowDays:     cfg.Pooling.AnalyticsWindow,
			AvgSavingsRate: decimal.NewFromFloat(cfg.Pooling.AvgSavingsRate),
		},
		log,
	)
	if err != nil {
		log.Fatal("Invalid analytics configuration", zap.Error(err))
	}
	analyticsService.SetCache(analyticsCache, cfg.Pooling.AnalyticsCacheTTL)

	// Event bus for pooling lifecycle events
	eventBus := event.NewInMemoryEventBus(log)
	poolingService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	poolingHandler := handler.NewPoolingHandler(poolingService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID first so recovery and logging carry it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if tracerProvider.IsEnabled() {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Tokens are issued by the marketplace identity service; this
	// backend only verifies them. An empty secret outside production
	// leaves the API open for local development.
	if cfg.JWT.Secret != "" {
		verifier := auth.NewTokenVerifier(cfg.JWT)
		engine.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			Verifier: verifier,
			SkipPaths: []string{
				"/api/v1/health",
				"/api/v1/ready",
				"/api/v1/system/info",
			},
		}))
	} else {
		log.Warn("JWT secret not configured, API authentication disabled")
	}

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(systemHandler).
		Register(poolingHandler).
		Register(analyticsHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
