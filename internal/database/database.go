package database

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/squadhub/squadhub-backend/internal/config"
	"github.com/squadhub/squadhub-backend/internal/models"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// CoreModels lists every model owned by the core services. Plugins migrate
// their own models through MigrateModels.
func CoreModels() []interface{} {
	return []interface{}{
		&models.School{},
		&models.User{},
		&models.RefreshToken{},
		&models.Point{},
		&models.Squad{},
		&models.SquadMember{},
		&models.Category{},
		&models.Subcategory{},
		&models.Material{},
		&models.Stage{},
		&models.Content{},
		&models.MaterialProgress{},
		&models.LearningPath{},
		&models.LearningPathItem{},
		&models.Discussion{},
		&models.DiscussionLike{},
		&models.Report{},
		&models.SystemLog{},
	}
}

// AutoMigrate migrates the core models on db.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(CoreModels()...)
}

// MigrateShared runs AutoMigrate for the core models on the global DB.
func MigrateShared() error {
	return AutoMigrate(DB)
}

// MigrateModels runs AutoMigrate for arbitrary models (used by plugins).
func MigrateModels(modelList []interface{}) error {
	if len(modelList) == 0 {
		return nil
	}
	return DB.AutoMigrate(modelList...)
}

func Ping() error {
	if DB == nil {
		return errors.New("database not connected")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
