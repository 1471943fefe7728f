// Package testutil provides an in-memory database, fixtures and HTTP helpers
// for package tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/squadhub/squadhub-backend/internal/database"
)

// SetupTestDB opens a private in-memory SQLite database, migrates the core
// models plus any extra (plugin) models, and installs it as database.DB.
func SetupTestDB(t *testing.T, extra ...interface{}) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	// One connection keeps every query on the same in-memory database and
	// serialises transactions.
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate core models: %v", err)
	}
	if len(extra) > 0 {
		if err := db.AutoMigrate(extra...); err != nil {
			t.Fatalf("migrate extra models: %v", err)
		}
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		_ = sqlDB.Close()
	})
	return db
}
