package main

import (
	"context"
	"errors"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/config"
	"github.com/pageza/tastybytes/backend/internal/logging"
	"github.com/pageza/tastybytes/backend/internal/models"
	"github.com/pageza/tastybytes/backend/internal/service"
	"github.com/pageza/tastybytes/backend/internal/store"
)

const devPassword = "testpassword123"

var seedUsers = []struct {
	name  string
	email string
	role  models.Role
}{
	{name: "Site Admin", email: "admin@example.com", role: models.RoleAdmin},
	{name: "Demo User", email: "demo@example.com", role: models.RoleMember},
	{name: "Jane Smith", email: "jane.smith@example.com", role: models.RoleMember},
}

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

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		if cfg.Environment == config.Production {
			logger.Fatal("SEED_PASSWORD is required in production")
		}
		password = devPassword
	}

	s, err := store.NewStoreFromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close(s)

	auth := service.NewAuthService(s, cfg.JWTSecret, nil, service.SystemClock{}, service.UUIDGenerator{}, logger)

	ctx := context.Background()
	created := 0
	for _, u := range seedUsers {
		user, err := auth.Provision(ctx, u.name, u.email, password, u.role)
		var authErr *service.AuthError
		switch {
		case errors.As(err, &authErr) && authErr.Conflict:
			logger.Info("Account already exists, skipping", zap.String("email", u.email))
		case err != nil:
			logger.Fatal("Failed to provision account", zap.String("email", u.email), zap.Error(err))
		default:
			created++
			logger.Info("Provisioned account",
				zap.String("email", user.Email),
				zap.String("role", string(user.Role)))
		}
	}

	logger.Info("Seeding complete", zap.Int("created", created), zap.Int("total", len(seedUsers)))
}
