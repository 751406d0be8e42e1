package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/siteworks/records-api/internal/api"
	"github.com/siteworks/records-api/internal/core/service"
	"github.com/siteworks/records-api/internal/infrastructure/config"
	mongodb "github.com/siteworks/records-api/internal/infrastructure/db/mongo"
	redisdb "github.com/siteworks/records-api/internal/infrastructure/db/redis"
	"github.com/siteworks/records-api/internal/infrastructure/queue"
	"github.com/siteworks/records-api/pkg/logger"

	_ "github.com/siteworks/records-api/docs"
)

// @title           Site Records API
// @version         1.0
// @description     Role-gated review workflow for field progress and payment records.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	recordRepo := mongodb.NewRecordRepository(db)
	commentRepo := mongodb.NewCommentRepository(db)
	revocations := redisdb.NewRevocationList(rdb)

	// --- Services ---
	bundleService := service.NewBundleService(recordRepo, log)
	dispatcher := queue.NewDispatcher(cfg.BundleWorkers, bundleService, log)
	dispatcher.Start(ctx)

	authService := service.NewAuthService(userRepo, revocations, cfg.JWTSecret, cfg.TokenTTL, log)
	workflowService := service.NewWorkflowService(recordRepo, commentRepo, dispatcher, log)
	userService := service.NewUserService(userRepo, log)

	// --- HTTP ---
	e := api.NewRouter(api.Services{
		Auth:     authService,
		Workflow: workflowService,
		Users:    userService,
	}, db, rdb, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("site records api started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
