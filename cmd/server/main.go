package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/config"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/api/handler"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/api/router"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/repository"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/service"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/worker"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/database"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/jwt"
	applogger "github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/logger"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/redis"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/storage"
)

func main() {
	// 1. configuration
	cfg, err := config.Load(os.Getenv("NOTAS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. database and migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	// 4. Redis is optional: without it tokens cannot be revoked and
	// rate limiting is off
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, token blacklist and rate limiting disabled", zap.Error(err))
		rdb = nil
	}

	// 5. report card archive
	var archive storage.Archive
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3Archive(&cfg.Storage)
		if err != nil {
			logger.Fatal("storage init failed", zap.Error(err))
		}
		archive = s3Archive
		logger.Info("report card archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	// 6. Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)

	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, archive, logger)
	h := handler.NewHandler(svc)

	// 7. background jobs
	scheduler := worker.NewScheduler(logger)
	if err := scheduler.AddDraftRetry(cfg.Grading.DraftRetrySpec, svc.Drafts); err != nil {
		logger.Fatal("scheduler init failed", zap.Error(err))
	}
	scheduler.Start()

	// 8. HTTP server
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// 9. graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	scheduler.Stop(ctx)

	// pending appreciation drafts must reach the store before the pool closes
	if err := svc.Drafts.FlushAll(ctx); err != nil {
		logger.Error("some appreciation drafts were not saved", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Warn("closing database failed", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
