package model

import "time"

// LinkStats представляет статистику переходов по ссылке.
type LinkStats struct {
	IsActive    bool       `json:"is_active"`
	OriginalURL string     `json:"original_url"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ClickCount  int64      `json:"click_count"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}
