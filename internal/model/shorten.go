package model

import "time"

// ShortenRequest представляет структуру запроса на сокращение URL.
type ShortenRequest struct {
	OriginalURL string     `json:"original_url"`
	CustomAlias string     `json:"custom_alias,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// LinkInfo представляет структуру ответа с сокращённым URL.
type LinkInfo struct {
	ShortURL    string     `json:"short_url"`
	OriginalURL string     `json:"original_url"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
