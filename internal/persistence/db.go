package persistence

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"replyflow/internal/config"
	"replyflow/pkg/retry"
)

type DB struct {
	Logger *slog.Logger
	Config *config.Config

	db *gorm.DB
}

// Open connects to dsn directly, outside of the service container.
func Open(dsn string) (*DB, error) {
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return &DB{db: gormDB, Logger: slog.Default()}, nil
}

func (db *DB) Init(ctx context.Context) error {
	db.Logger = db.Logger.With("component", "persistence.DB")

	return retry.Do(ctx, 5, 500*time.Millisecond, func() error {
		gormDB, err := gorm.Open(postgres.Open(db.Config.DatabaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			db.Logger.Warn("database is not reachable yet", "error", err)
			return err
		}

		db.db = gormDB
		return nil
	})
}

func (db *DB) WithContext(ctx context.Context) *gorm.DB {
	return db.db.WithContext(ctx)
}

func (db *DB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return db.db.WithContext(ctx).Transaction(fn)
}

func (db *DB) DB() (*sql.DB, error) {
	return db.db.DB()
}

func (db *DB) HealthCheck(ctx context.Context) error {
	sqlDB, err := db.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (db *DB) Shutdown(_ context.Context) error {
	sqlDB, err := db.db.DB()
	if err != nil {
		return nil
	}
	return sqlDB.Close()
}
