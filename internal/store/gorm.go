package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/tastybytes/backend/internal/database"
)

// Entry is one key-value row.
type Entry struct {
	Key       string    `gorm:"column:store_key;primaryKey;size:255"`
	Value     string    `gorm:"column:store_value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Entry) TableName() string {
	return "kv_entries"
}

// GormStore keeps values in a single table of a SQLite or PostgreSQL database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the entry table and returns the store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", Entry{}.TableName(), err)
	}
	return &GormStore{db: db}, nil
}

func (g *GormStore) Get(ctx context.Context, key string) (string, bool, error) {
	var e Entry
	err := g.db.WithContext(ctx).Where("store_key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return e.Value, true, nil
}

func (g *GormStore) Set(ctx context.Context, key, value string) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"store_value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (g *GormStore) Remove(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Where("store_key = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (g *GormStore) Ping(ctx context.Context) error {
	return database.HealthCheck(ctx, g.db)
}

func (g *GormStore) Close() error {
	return database.Close(g.db)
}

var (
	_ Store  = (*GormStore)(nil)
	_ Pinger = (*GormStore)(nil)
)
