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
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/noah-isme/intelliplan-api/api/swagger"
	"github.com/noah-isme/intelliplan-api/internal/catalog"
	"github.com/noah-isme/intelliplan-api/internal/handler"
	internalmiddleware "github.com/noah-isme/intelliplan-api/internal/middleware"
	"github.com/noah-isme/intelliplan-api/internal/repository"
	"github.com/noah-isme/intelliplan-api/internal/service"
	"github.com/noah-isme/intelliplan-api/pkg/cache"
	"github.com/noah-isme/intelliplan-api/pkg/config"
	"github.com/noah-isme/intelliplan-api/pkg/export"
	"github.com/noah-isme/intelliplan-api/pkg/jobs"
	"github.com/noah-isme/intelliplan-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/intelliplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/intelliplan-api/pkg/middleware/requestid"
	"github.com/noah-isme/intelliplan-api/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

// @title IntelliPlan API
// @version 0.1.0
// @description Conflict-free course timetable generation with natural-language filtering
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, timetable cache disabled", zap.Error(err))
		} else {
			redisClient = client
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, redisClient != nil)

	uploads, err := storage.NewLocalStorage(cfg.Catalog.UploadDir)
	if err != nil {
		return err
	}

	store := catalog.NewStore()
	catalogSvc := service.NewCatalogService(store, catalog.NewLoader(logr), uploads, cacheSvc, metrics, validate, logr, service.CatalogConfig{
		Path:            cfg.Catalog.Path,
		MaxUploadSize:   cfg.Catalog.MaxUploadSize,
		UploadRetention: cfg.Catalog.UploadRetention,
	})
	background := jobs.NewQueue("catalog-maintenance", jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: 30 * time.Second,
		Logger:     logr,
	})
	background.Start(ctx)
	defer background.Stop()
	catalogSvc.RunInBackground(background)

	if _, err := catalogSvc.Reload(ctx); err != nil {
		logr.Warn("initial catalog load failed, waiting for an upload", zap.String("path", cfg.Catalog.Path), zap.Error(err))
	}

	timetableSvc := service.NewTimetableService(store, cacheSvc, metrics, validate, logr, service.TimetableConfig{
		MaxCourses: cfg.Scheduler.MaxCourses,
		Memoize:    cfg.Scheduler.Memoize,
		ResultTTL:  cfg.Scheduler.ResultTTL,
		CacheTTL:   cfg.Cache.TTL,
	})
	exportSvc, err := service.NewExportService(cfg.Export.Timezone, validate, logr,
		export.NewCSVExporter(), export.NewPDFExporter(), export.NewICSExporter())
	if err != nil {
		return err
	}

	var cachePinger interface {
		Ping(ctx context.Context) error
	}
	if redisClient != nil {
		cachePinger = cacheRepo
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics"))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Routes{
		Timetables: handler.NewTimetableHandler(timetableSvc, exportSvc),
		Catalog:    handler.NewCatalogHandler(catalogSvc),
		Metrics:    handler.NewMetricsHandler(metrics, catalogSvc, cachePinger),
		Throttle:   internalmiddleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Handler(),
		AuditLog:   logr,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logr.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Catalog.Watch {
		watcher := catalog.NewWatcher(cfg.Catalog.Path, catalogSvc, logr)
		g.Go(func() error {
			if err := watcher.Run(gctx); err != nil {
				logr.Warn("catalog watcher stopped", zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}
