package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pageza/macrolog/backend/config"
	"github.com/pageza/macrolog/backend/internal/database"
	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/service"
)

// seed_foods loads the built-in foods into the food cache. Running it twice
// leaves the cache unchanged.
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	inserted, err := service.NewFoodService(db, nil, log).SeedBuiltins(ctx)
	if err != nil {
		log.Fatal("Failed to seed foods", "error", err)
	}
	log.Info("Seeded built-in foods", "inserted", inserted)
}
