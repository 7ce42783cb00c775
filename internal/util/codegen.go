package util

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"regexp"
)

// Алфавит коротких кодов: url-safe, 64 символа, поэтому остаток от деления
// байта не даёт перекоса.
const codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"

// ErrGenerationExhausted возвращается, когда все попытки генерации дали
// занятые коды. На практике это признак деградации, а не штатная ситуация.
var ErrGenerationExhausted = errors.New("short code generation attempts exhausted")

// codePattern задаёт допустимый вид короткого кода (и пользовательского алиаса).
var codePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,30}$`)

// ValidCode сообщает, допустим ли код: 1–30 символов из [a-zA-Z0-9_-].
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// CodeChecker сообщает, занят ли код в хранилище.
type CodeChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// Generator выдаёт случайные короткие коды, свободные на момент проверки.
// Проверка занятости — оптимизация: от гонки двух генераций защищает
// уникальный индекс хранилища при вставке.
type Generator struct {
	checker     CodeChecker
	maxAttempts int
}

// NewGenerator создаёт генератор с ограничением числа попыток.
func NewGenerator(checker CodeChecker, maxAttempts int) *Generator {
	return &Generator{checker: checker, maxAttempts: maxAttempts}
}

// Unique возвращает случайный код длины length, не занятый в хранилище.
func (g *Generator) Unique(ctx context.Context, length int) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		code, err := RandomCode(length)
		if err != nil {
			return "", err
		}
		exists, err := g.checker.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrGenerationExhausted
}

// RandomCode возвращает случайную строку длины length из алфавита кодов.
func RandomCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
