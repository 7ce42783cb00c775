package service

import (
	"errors"

	"github.com/takore/linkcut/internal/repositories"
	"github.com/takore/linkcut/internal/util"
)

// Доменные ошибки сервиса ссылок. HTTP-слой транслирует их в статусы,
// всё прочее поднимается как внутренняя ошибка сервера.
var (
	// ErrNotFound — ссылка отсутствует.
	ErrNotFound = repositories.ErrNotFound
	// ErrAliasTaken — алиас уже занят другой ссылкой.
	ErrAliasTaken = errors.New("alias already in use")
	// ErrForbidden — нарушение правил владения.
	ErrForbidden = errors.New("forbidden")
	// ErrExpired — ссылка существует, но срок её действия истёк.
	// Намеренно отличается от ErrNotFound: клиент видит 410, а не 404.
	ErrExpired = errors.New("link has expired")
	// ErrGenerationExhausted — исчерпаны попытки генерации кода.
	ErrGenerationExhausted = util.ErrGenerationExhausted
	// ErrInvalidAlias — алиас не проходит по длине или алфавиту.
	ErrInvalidAlias = errors.New("invalid alias")
	// ErrInvalidURL — оригинальный URL не является абсолютным.
	ErrInvalidURL = errors.New("invalid original URL")
)
