package storage

import (
	"fmt"

	"github.com/panda-moodle/moodle-repository-pandavideo/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Concurrent handlers write cache rows; WAL plus a busy timeout keeps them
// from failing with "database is locked".
const sqliteParams = "?_journal_mode=WAL&_busy_timeout=5000"

// NewDatabase opens the sqlite file at dbPath and migrates the cache and
// search session tables.
func NewDatabase(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+sqliteParams), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dbPath, err)
	}

	if err := db.AutoMigrate(&models.CacheEntry{}, &models.SearchSession{}); err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", dbPath, err)
	}

	return db, nil
}
