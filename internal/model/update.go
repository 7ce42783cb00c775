package model

import (
	"encoding/json"
	"time"
)

// UpdateRequest представляет частичное обновление ссылки.
//
// Для expires_at различаются два случая: поле отсутствует в JSON
// (срок действия не трогаем) и явный null (срок действия снимается).
// Поэтому тело разбирается вручную, а не обычным Unmarshal.
type UpdateRequest struct {
	OriginalURL *string
	CustomAlias *string
	ExpiresAt   *time.Time
	// ExpiresSet равен true, если ключ expires_at присутствовал в теле запроса.
	ExpiresSet bool
}

// UnmarshalJSON разбирает тело запроса, запоминая присутствие ключа expires_at.
func (u *UpdateRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["original_url"]; ok {
		if err := json.Unmarshal(v, &u.OriginalURL); err != nil {
			return err
		}
	}
	if v, ok := raw["custom_alias"]; ok {
		if err := json.Unmarshal(v, &u.CustomAlias); err != nil {
			return err
		}
	}
	if v, ok := raw["expires_at"]; ok {
		u.ExpiresSet = true
		if err := json.Unmarshal(v, &u.ExpiresAt); err != nil {
			return err
		}
	}
	return nil
}
