package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appingestion "github.com/settatam/shop-sub015/internal/application/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/shared"
	"github.com/settatam/shop-sub015/internal/infrastructure/cache"
	"github.com/settatam/shop-sub015/internal/infrastructure/config"
	"github.com/settatam/shop-sub015/internal/infrastructure/ecommerce"
	"github.com/settatam/shop-sub015/internal/infrastructure/jobs"
	"github.com/settatam/shop-sub015/internal/infrastructure/logger"
	"github.com/settatam/shop-sub015/internal/infrastructure/normalizer"
	"github.com/settatam/shop-sub015/internal/infrastructure/notify"
	"github.com/settatam/shop-sub015/internal/infrastructure/persistence"
	"github.com/settatam/shop-sub015/internal/interfaces/http/handler"
	"github.com/settatam/shop-sub015/internal/interfaces/http/middleware"
	"github.com/settatam/shop-sub015/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting order ingestion service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	// Job dedup store: Redis when configured so re-delivered jobs dedupe
	// across instances, in-memory otherwise.
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisIdempotencyStore(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		idempotencyStore = store
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	}
	defer func() { _ = idempotencyStore.Close() }()

	normalizers := normalizer.NewDefaultRegistry()

	connectionRepo := persistence.NewGormConnectionRepository(db.DB)
	externalRepo := persistence.NewGormExternalOrderRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	provisioner := appingestion.NewChannelProvisioner(log)
	depleter := appingestion.NewStockDepleter(log)
	synchronizer := appingestion.NewStatusSynchronizer(txScope, log)

	scheduler := jobs.NewScheduler(cfg.Jobs, idempotencyStore, log)
	notifier := notify.NewLogOversellNotifier(log)

	importer := appingestion.NewImporter(
		normalizers,
		connectionRepo,
		externalRepo,
		txScope,
		provisioner,
		depleter,
		synchronizer,
		scheduler,
		notifier,
		log,
	)

	statusSource := ecommerce.NewHTTPStatusSource(connectionRepo, normalizers, log)
	scheduler.Register(ingestion.JobTypeStatusResync, jobs.NewStatusResyncExecutor(statusSource, importer, log))
	scheduler.Register(ingestion.JobTypeReturnsResync, jobs.NewReturnsResyncExecutor(statusSource, importer, log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start job scheduler", zap.Error(err))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ingestionHandler := handler.NewIngestionHandler(importer, externalRepo)
	router.NewRouter(engine).
		Register(ingestionHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Error("Job scheduler shutdown failed", zap.Error(err))
	}

	log.Info("Service stopped")
}
