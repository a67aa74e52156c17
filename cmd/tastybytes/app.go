package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/config"
	"github.com/pageza/tastybytes/backend/internal/logging"
	"github.com/pageza/tastybytes/backend/internal/service"
	"github.com/pageza/tastybytes/backend/internal/store"
)

// env holds what the commands need from the outside world. Tests replace
// the config loader and the store.
type env struct {
	out        io.Writer
	loadConfig func() (*config.Config, error)
	openStore  func(cfg *config.Config, logger *zap.Logger) (store.Store, error)
	clock      service.Clock
	ids        service.IDGenerator
}

func defaultEnv() *env {
	return &env{
		out:        os.Stdout,
		loadConfig: config.LoadConfig,
		openStore:  store.NewStoreFromConfig,
		clock:      service.SystemClock{},
		ids:        service.UUIDGenerator{},
	}
}

// app is the wired local client. The caller must defer app.Close().
type app struct {
	store   store.Store
	recipes *service.RecipeRepository
	auth    *service.AuthService
	session *service.Session
	logger  *zap.Logger
}

type globalFlags struct {
	dbPath  string
	verbose bool
}

func (e *env) newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if flags.dbPath != "" {
		cfg.StoreType = config.StoreSQLite
		cfg.SQLitePath = flags.dbPath
	}

	level := "warn"
	if flags.verbose {
		level = "debug"
	}
	logger, err := logging.New(cfg.Environment, level)
	if err != nil {
		return nil, err
	}

	s, err := e.openStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	a := &app{store: s, logger: logger}
	a.recipes = service.NewRecipeRepository(s, e.clock, e.ids, logger)
	if err := a.recipes.Initialize(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var google service.GoogleVerifier
	if cfg.GoogleClientID != "" {
		google = service.NewGoogleTokenVerifier(cfg.GoogleClientID, "")
	}
	a.auth = service.NewAuthService(s, cfg.JWTSecret, google, e.clock, e.ids, logger)

	a.session = service.NewSession(s, a.auth, logger)
	if err := a.session.Restore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() {
	if err := store.Close(a.store); err != nil {
		a.logger.Warn("Failed to close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}
