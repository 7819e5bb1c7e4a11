package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pageza/macrolog/backend/config"
	"github.com/pageza/macrolog/backend/internal/api"
	"github.com/pageza/macrolog/backend/internal/database"
	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/middleware"
	"github.com/pageza/macrolog/backend/internal/server"
	"github.com/pageza/macrolog/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.RunMigrations(db, "migrations", log); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	services := api.Services{DB: db}

	// Redis backs rate limiting and live invalidation; both are optional.
	var views service.ViewInvalidator = service.NoopInvalidator{}
	redisClient, err := database.NewRedisClient(cfg, log)
	if err != nil {
		log.Warn("Redis unavailable, running without rate limiting and live updates", "error", err)
	} else {
		defer redisClient.Close()
		invalidator := service.NewRedisInvalidator(redisClient)
		views = invalidator
		services.Views = invalidator
		services.SearchLimiter = middleware.NewSearchRateLimiter(redisClient, cfg.SearchRateLimit, log)
	}

	s3cfg, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		log.Warn("S3 unavailable, history export disabled", "error", err)
	}
	var store service.ObjectStore
	if s3cfg != nil {
		store = s3cfg
	}

	provider := service.NewOpenFoodFactsClient(cfg.NutritionAPIURL, cfg.NutritionUserAgent, cfg.NutritionTimeout)

	services.Auth = service.NewAuthService(cfg.JWTSecret)
	services.Foods = service.NewFoodService(db, provider, log)
	services.Logs = service.NewLogService(db, services.Foods, views, cfg.Location(), log)
	services.History = service.NewHistoryService(services.Logs, cfg.HistoryMaxDays, log)
	services.Goals = service.NewGoalService(db, views, log)
	services.Exports = service.NewExportService(services.History, store, log)

	srv := server.New(cfg, services, log)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatal("Server error", "error", err)
		}
		return
	case sig := <-quit:
		log.Info("Received signal", "signal", sig.String())
	}

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Error("Server shutdown error", "error", err)
		return
	}
	log.Info("Server stopped")
}
