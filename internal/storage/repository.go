package storage

import (
	"context"
	"errors"

	"github.com/panda-moodle/moodle-repository-pandavideo/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists cached API responses and picker search sessions
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Has(ctx context.Context, key string) bool {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CacheEntry{}).Where("cache_key = ?", key).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

func (r *Repository) Get(ctx context.Context, key string) (string, error) {
	var entry models.CacheEntry
	if err := r.db.WithContext(ctx).Where("cache_key = ?", key).First(&entry).Error; err != nil {
		return "", err
	}
	return entry.Body, nil
}

// Set stores value under key; the last write wins.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	entry := models.CacheEntry{Key: key, Body: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&entry).Error
}

// Purge removes every cached response
func (r *Repository) Purge(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.CacheEntry{})
	return res.RowsAffected, res.Error
}

// GetSearchText returns the last search text of a session. ok is false
// when the session has no stored search.
func (r *Repository) GetSearchText(ctx context.Context, sessionID string) (text string, ok bool, err error) {
	var session models.SearchSession
	err = r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return session.SearchText, true, nil
}

func (r *Repository) SaveSearchText(ctx context.Context, sessionID, text string) error {
	return r.db.WithContext(ctx).Save(&models.SearchSession{SessionID: sessionID, SearchText: text}).Error
}
