package models

import "time"

// CacheEntry stores a raw API response body under its endpoint key
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;column:cache_key" json:"key"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchSession remembers the last search text of a picker session
type SearchSession struct {
	SessionID  string    `gorm:"primaryKey" json:"session_id"`
	SearchText string    `json:"search_text"`
	UpdatedAt  time.Time `json:"updated_at"`
}
