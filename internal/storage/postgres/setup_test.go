package postgres

import (
	"testing"

	"github.com/omnipress/publishq/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database migrated with every queue
// model. The connection pool is pinned to one connection so concurrent test
// goroutines share the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Job{}, &models.DLQEntry{}, &models.BreakerState{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}
