package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/tastybytes/backend/config"
	"github.com/pageza/tastybytes/backend/internal/api"
	"github.com/pageza/tastybytes/backend/internal/database"
	"github.com/pageza/tastybytes/backend/internal/export"
	"github.com/pageza/tastybytes/backend/internal/logging"
	"github.com/pageza/tastybytes/backend/internal/middleware"
	"github.com/pageza/tastybytes/backend/internal/server"
	"github.com/pageza/tastybytes/backend/internal/service"
	"github.com/pageza/tastybytes/backend/internal/store"
)

const healthInterval = 30 * time.Second

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

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := store.NewStoreFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(s); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}()

	recipes := service.NewRecipeRepository(s, service.SystemClock{}, service.UUIDGenerator{}, logger)
	if err := recipes.Initialize(ctx); err != nil {
		return err
	}
	recipes.Subscribe(func(e service.RecipeEvent) {
		logger.Debug("Recipe event", zap.String("kind", string(e.Kind)), zap.String("recipe_id", e.RecipeID))
	})

	var google service.GoogleVerifier
	if cfg.GoogleClientID != "" {
		google = service.NewGoogleTokenVerifier(cfg.GoogleClientID, "")
	} else {
		logger.Info("GOOGLE_CLIENT_ID not set; Google sign-in disabled")
	}
	auth := service.NewAuthService(s, cfg.JWTSecret, google, service.SystemClock{}, service.UUIDGenerator{}, logger)

	deps := api.Dependencies{
		Recipes: recipes,
		Auth:    auth,
		Ping: func(ctx context.Context) error {
			return store.Ping(ctx, s)
		},
	}

	if cfg.S3Enabled() {
		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return err
		}
		deps.Publisher = export.NewPublisher(s3Config, cfg.S3Presign, logger)
	} else {
		logger.Info("S3_BUCKET_NAME not set; publishing disabled")
	}

	client, closeRedis := rateLimitClient(cfg, s, logger)
	defer closeRedis()
	if client != nil {
		deps.CreationLimiter = middleware.NewRecipeCreationRateLimiter(client, cfg.RedisKeyPrefix, logger)
		deps.PublishLimiter = middleware.NewRecipePublishRateLimiter(client, cfg.RedisKeyPrefix, logger)
	}

	srv := server.New(cfg, deps, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndRun(ctx)
	})
	g.Go(func() error {
		watchHealth(ctx, deps.Ping, logger)
		return nil
	})
	return g.Wait()
}

// rateLimitClient returns the Redis connection used for rate limiting, or
// nil when Redis is not configured. A Redis-backed store shares its client.
func rateLimitClient(cfg *config.Config, s store.Store, logger *zap.Logger) (*redis.Client, func()) {
	if rs, ok := s.(*store.RedisStore); ok {
		return rs.Client(), func() {}
	}
	if cfg.RedisURL == "" {
		logger.Info("Redis not configured; rate limiting disabled")
		return nil, func() {}
	}

	client, err := database.NewRedisClient(cfg, logger)
	if err != nil {
		logger.Warn("Rate limiting disabled", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}

// watchHealth logs store outages until ctx is cancelled.
func watchHealth(ctx context.Context, ping func(context.Context) error, logger *zap.Logger) {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := ping(pingCtx)
		cancel()

		switch {
		case err != nil && healthy:
			logger.Error("Store is unreachable", zap.Error(err))
		case err == nil && !healthy:
			logger.Info("Store is reachable again")
		}
		healthy = err == nil
	}
}
