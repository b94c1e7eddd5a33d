package repository

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/oranihq/orani-voice-service/internal/domain"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	// An in-memory sqlite database exists per connection.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&domain.PhoneNumber{},
		&domain.Assistant{},
		&domain.BusinessProfile{},
		&domain.CallSummary{},
		&domain.Message{},
	); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}
