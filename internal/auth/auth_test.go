package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takore/linkcut/internal/auth"
)

func TestCurrentPrincipal_Valid(t *testing.T) {
	a := auth.New("test-secret")
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  "auth_token",
		Value: a.SignCookieValue(id),
	})

	principal := a.CurrentPrincipal(req)
	require.NotNil(t, principal)
	assert.Equal(t, id, principal.ID)
}

// Запрос без куки — анонимный, а не ошибочный.
func TestCurrentPrincipal_NoCookie(t *testing.T) {
	a := auth.New("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, a.CurrentPrincipal(req))
}

func TestCurrentPrincipal_BadSignature(t *testing.T) {
	a := auth.New("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  "auth_token",
		Value: uuid.NewString() + ":bad-signature",
	})

	assert.Nil(t, a.CurrentPrincipal(req))
}

// Подпись чужим секретом не принимается.
func TestCurrentPrincipal_WrongSecret(t *testing.T) {
	a := auth.New("test-secret")
	other := auth.New("other-secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  "auth_token",
		Value: other.SignCookieValue(uuid.New()),
	})

	assert.Nil(t, a.CurrentPrincipal(req))
}

func TestIssueSession(t *testing.T) {
	a := auth.New("test-secret")
	rec := httptest.NewRecorder()

	principal := a.IssueSession(rec)
	assert.NotEqual(t, uuid.Nil, principal.ID)

	resp := rec.Result()
	defer resp.Body.Close()

	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "auth_token", cookies[0].Name)

	// Выданная кука резолвится обратно в того же принципала.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	got := a.CurrentPrincipal(req)
	require.NotNil(t, got)
	assert.Equal(t, principal.ID, got.ID)
}
