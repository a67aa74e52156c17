package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/config"
	"github.com/pageza/tastybytes/backend/internal/logging"
	"github.com/pageza/tastybytes/backend/internal/service"
	"github.com/pageza/tastybytes/backend/internal/store"
)

// Replaces the stored recipe collection with the seed recipes.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	s, err := store.NewStoreFromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close(s)

	ctx := context.Background()
	recipes := service.NewRecipeRepository(s, service.SystemClock{}, service.UUIDGenerator{}, logger)
	if err := recipes.Reset(ctx); err != nil {
		logger.Fatal("Failed to reset recipes", zap.Error(err))
	}

	logger.Info("Recipes reset", zap.Int("count", len(recipes.List())))
}
