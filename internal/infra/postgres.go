package infra

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"tripwise/internal/models/db_models"
)

func InitPostgresql(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{}
	if cfg.IsProduction() {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(postgres.Open(cfg.PostgresURL), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("PostgreSQL connected and migrated")
	return db, nil
}

// Migrate enables pgvector and brings the schema up to date.
func Migrate(db *gorm.DB) error {
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enabling pgvector: %w", err)
	}
	if err := db.AutoMigrate(
		&db_models.Account{},
		&db_models.Itinerary{},
		&db_models.ItineraryEmbedding{},
		&db_models.Expense{},
	); err != nil {
		return fmt.Errorf("auto-migrating schema: %w", err)
	}
	return nil
}

func ClosePostgresql(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("getting database instance", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Error("closing database connection", zap.Error(err))
	} else {
		log.Info("PostgreSQL database connection closed")
	}
}

// WithTransaction runs fn in a transaction, committing when it returns nil.
func WithTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit().Error
}
