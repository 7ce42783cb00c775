package model

import (
	"time"

	"github.com/google/uuid"
)

// Link представляет запись сокращённой ссылки в базе данных.
// OwnerID равен nil для анонимных ссылок: такие ссылки нельзя
// изменять и удалять никому, включая аутентифицированных пользователей.
type Link struct {
	ID          uuid.UUID
	OriginalURL string
	ShortCode   string
	OwnerID     *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ExpiresAt   *time.Time
	IsActive    bool
	ClickCount  int64
	LastUsedAt  *time.Time
}

// CacheEntry представляет запись кэша редиректов (code -> ссылка).
// В кэш попадают только ссылки без срока действия.
type CacheEntry struct {
	ID          uuid.UUID `json:"id"`
	OriginalURL string    `json:"original_url"`
}
