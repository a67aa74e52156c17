package store

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/config"
	"github.com/pageza/tastybytes/backend/internal/database"
)

// NewStoreFromConfig creates the Store implementation selected by cfg.StoreType.
// The caller must Close the returned store.
func NewStoreFromConfig(cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.StoreType {
	case config.StoreMemory:
		logger.Warn("Using in-memory store; data will not survive a restart")
		return NewMemoryStore(), nil
	case config.StoreRedis:
		client, err := database.NewRedisClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.RedisKeyPrefix), nil
	case config.StoreSQLite, config.StorePostgres:
		db, err := database.Open(cfg, logger)
		if err != nil {
			return nil, err
		}
		s, err := NewGormStore(db)
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.StoreType)
	}
}
