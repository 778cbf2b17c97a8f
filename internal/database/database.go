package database

import (
	"fmt"
	"time"

	"github.com/silkloom/backend/internal/config"
	"github.com/silkloom/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB initializes the database connection with configuration
func InitDB(dbConfig config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dbConfig.URL), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdle)
	sqlDB.SetMaxOpenConns(dbConfig.MaxConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate runs gorm auto-migration for all models. Versioned constraint
// migrations live in the migrations package and run separately at startup.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.PromoCode{},
		&models.PromoAffiliate{},
		&models.Purchase{},
		&models.CatalogItem{},
		&models.Lead{},
		&models.LeaderboardEntry{},
		&models.AffiliateUser{},
	)
}
