package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	cookieName   = "auth_token"
	cookieMaxAge = 365 * 24 * 60 * 60 // 1 год
)

// Principal представляет аутентифицированного вызывающего со стабильным
// идентификатором. Отсутствие принципала (nil) — анонимный запрос.
type Principal struct {
	ID uuid.UUID
}

// Auth разбирает подписанную куку вида auth_token=userID:signature.
// Выпуск и проверка учётных данных в остальном — забота внешнего
// сервиса идентификации; здесь только разрешение куки в принципала.
type Auth struct {
	SecretKey string
}

func New(secret string) *Auth {
	return &Auth{SecretKey: secret}
}

// Создать подпись
func (a *Auth) sign(userID string) string {
	mac := hmac.New(sha256.New, []byte(a.SecretKey))
	mac.Write([]byte(userID))
	return hex.EncodeToString(mac.Sum(nil))
}

// CurrentPrincipal возвращает принципала по куке запроса, либо nil.
// Отсутствующая или некорректно подписанная кука означает анонимный вызов,
// а не ошибку: все эндпоинты сервиса принимают анонимных вызывающих.
func (a *Auth) CurrentPrincipal(r *http.Request) *Principal {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	parts := strings.SplitN(cookie.Value, ":", 2)
	if len(parts) != 2 || !hmac.Equal([]byte(a.sign(parts[0])), []byte(parts[1])) {
		return nil
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		return nil
	}
	return &Principal{ID: id}
}

// IssueSession выставляет новую подписанную куку и возвращает принципала.
func (a *Auth) IssueSession(w http.ResponseWriter) Principal {
	id := uuid.New()
	sig := a.sign(id.String())
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    fmt.Sprintf("%s:%s", id, sig),
		Path:     "/",
		HttpOnly: true,
		MaxAge:   cookieMaxAge,
	})
	return Principal{ID: id}
}

// SignCookieValue собирает валидное значение куки для заданного ID.
// Используется в тестах.
func (a *Auth) SignCookieValue(id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", id, a.sign(id.String()))
}
