package repositories

import "errors"

// Ошибки уровня хранилища.
var (
	// ErrNotFound возвращается, когда ссылка отсутствует в хранилище.
	ErrNotFound = errors.New("link not found")
	// ErrDuplicateCode возвращается при нарушении уникального индекса short_code.
	// Гонку двух конкурентных вставок разрешает сама БД, а не предварительная
	// проверка в приложении.
	ErrDuplicateCode = errors.New("short code already exists")
)
