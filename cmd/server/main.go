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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/tradelog/backend/docs"
	applc "github.com/tradelog/backend/internal/application/landedcost"
	"github.com/tradelog/backend/internal/domain/landedcost"
	"github.com/tradelog/backend/internal/domain/shared"
	"github.com/tradelog/backend/internal/infrastructure/cache"
	"github.com/tradelog/backend/internal/infrastructure/config"
	"github.com/tradelog/backend/internal/infrastructure/event"
	"github.com/tradelog/backend/internal/infrastructure/logger"
	"github.com/tradelog/backend/internal/infrastructure/persistence"
	"github.com/tradelog/backend/internal/infrastructure/telemetry"
	"github.com/tradelog/backend/internal/interfaces/http/handler"
	"github.com/tradelog/backend/internal/interfaces/http/middleware"
	"github.com/tradelog/backend/internal/interfaces/http/router"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Landed Cost & Settlement API
//	@version		1.0
//	@description	Allocates import landed cost onto purchase order lines and settles
//	@description	what is owed to logistic, partner and packing parties.
//	@BasePath		/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry providers come first so the final logger can tee into the
	// OTLP log pipeline.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, version, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, version, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, version, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}

	var otelCore zapcore.Core
	if loggerProvider.IsEnabled() {
		otelCore = loggerProvider.ZapCore(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
	}
	log, err := logger.New(logCfg, otelCore)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	_ = logger.Sync(bootLog)
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting landed cost service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	db, err := persistence.NewDatabase(ctx, &cfg.Database,
		persistence.WithConnectRetries(5, 2*time.Second),
		persistence.WithZapLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel),
			logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
			logger.WithBoundValues(cfg.Telemetry.DBLogFullSQL),
		),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	meter := meterProvider.Meter("tradelog/landed-cost")
	dbInstrumentation, err := telemetry.InstrumentDB(db.DB, cfg.Telemetry, meter, log)
	if err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}

	idempotencyStore, err := cache.NewIdempotencyStore(ctx, cfg.Idempotency, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}

	// Repositories and the transactional scope
	numberFormat := persistence.NumberFormat{
		VoucherPrefix:    cfg.LandedCost.VoucherPrefix,
		SettlementPrefix: cfg.LandedCost.SettlementPrefix,
		Padding:          cfg.LandedCost.NumberPadding,
	}
	voucherRepo := persistence.NewGormVoucherRepository(db.DB)
	settlementRepo := persistence.NewGormSettlementRepository(db.DB)
	partyDirectory := persistence.NewGormPartyDirectory(db.DB)
	orderDirectory := persistence.NewGormPurchaseOrderDirectory(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB, numberFormat)

	// Domain events: audit log subscriber, deduplicated through the
	// idempotency store so a re-published event is logged once.
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewIdempotentHandler(
		event.NewAuditLogHandler(log), idempotencyStore, shared.DefaultIdempotencyConfig(), log,
	))

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Meter: meter, Logger: log})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}

	partyDefaults, err := cfg.LandedCost.PartyDefaults()
	if err != nil {
		log.Fatal("Invalid landed cost party defaults", zap.Error(err))
	}
	defaults := make(applc.PartyDefaults, len(partyDefaults))
	for category, id := range partyDefaults {
		defaults[landedcost.PayableCategory(category)] = id
	}

	voucherService := applc.NewVoucherService(txScope, voucherRepo, orderDirectory, partyDirectory, log)
	voucherService.SetPartyDefaults(defaults)
	voucherService.SetEventPublisher(eventBus)
	voucherService.SetBusinessMetrics(businessMetrics)

	settlementService := applc.NewSettlementService(txScope, settlementRepo, voucherRepo, partyDirectory, log)
	settlementService.SetEventPublisher(eventBus)
	settlementService.SetBusinessMetrics(businessMetrics)

	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to initialize HTTP metrics", zap.Error(err))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.App.Env == "production"

	// RequestID runs first so every later layer (logs, spans, errors) can
	// read the id.
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanAttributes(),
		httpMetrics,
		middleware.SecureWithConfig(securityCfg),
		middleware.CORSWithConfig(corsCfg),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.HealthCheck{
		"database": db.Ping,
	})
	engine.GET("/health", systemHandler.Health)

	// Swagger documentation endpoint
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var idempotency gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.Idempotency.Enabled {
		idempotency = middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL)
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"), router.WithLogger(log))
	r.Register(router.LandedCostRoutes(
		handler.NewVoucherHandler(voucherService),
		handler.NewSettlementHandler(settlementService),
		idempotency,
	)).Register(router.SystemRoutes(systemHandler))
	r.Setup()

	engine.GET("/api/v1/ping", systemHandler.Ping)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := dbInstrumentation.Close(); err != nil {
		log.Warn("Failed to stop database instrumentation", zap.Error(err))
	}
	if err := idempotencyStore.Close(); err != nil {
		log.Warn("Failed to close idempotency store", zap.Error(err))
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logger": loggerProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}
