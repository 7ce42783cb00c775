package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takore/linkcut/internal/auth"
	"github.com/takore/linkcut/internal/handlers"
	"github.com/takore/linkcut/internal/model"
	"github.com/takore/linkcut/internal/repositories"
	"github.com/takore/linkcut/internal/router"
	"github.com/takore/linkcut/internal/service"
	"github.com/takore/linkcut/internal/util"
	"go.uber.org/zap"
)

type mockRepo struct {
	mu    sync.Mutex
	links map[uuid.UUID]*model.Link
}

func newMockRepo() *mockRepo {
	return &mockRepo{links: make(map[uuid.UUID]*model.Link)}
}

func (m *mockRepo) byCode(code string) *model.Link {
	for _, l := range m.links {
		if l.ShortCode == code {
			return l
		}
	}
	return nil
}

func (m *mockRepo) GetByCode(ctx context.Context, code string) (*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l := m.byCode(code); l != nil {
		cp := *l
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *mockRepo) SearchByOriginPrefix(ctx context.Context, prefix string) ([]*model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Link
	for _, l := range m.links {
		if strings.HasPrefix(strings.ToLower(l.OriginalURL), prefix) {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepo) Insert(ctx context.Context, link *model.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byCode(link.ShortCode) != nil {
		return repositories.ErrDuplicateCode
	}
	cp := *link
	m.links[link.ID] = &cp
	return nil
}

func (m *mockRepo) Update(ctx context.Context, link *model.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.ID]; !ok {
		return repositories.ErrNotFound
	}
	if other := m.byCode(link.ShortCode); other != nil && other.ID != link.ID {
		return repositories.ErrDuplicateCode
	}
	cp := *link
	m.links[link.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.links, id)
	return nil
}

func (m *mockRepo) IncrementClick(ctx context.Context, id uuid.UUID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[id]
	if !ok {
		return repositories.ErrNotFound
	}
	link.ClickCount++
	link.LastUsedAt = &now
	return nil
}

func (m *mockRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byCode(code) != nil, nil
}

func (m *mockRepo) Ping(ctx context.Context) error { return nil }

func newTestRouter(repo *mockRepo) (*chi.Mux, *auth.Auth) {
	logger := zap.NewNop()
	gen := util.NewGenerator(repo, 10)
	svc := service.NewLinkService(repo, nil, gen, logger, "http://localhost:8080/links", 6)
	a := auth.New("test-secret")
	handler := handlers.NewHandler(svc, a, logger)
	return router.NewRouter(handler, logger), a
}

func seed(t *testing.T, repo *mockRepo, code, original string, owner *uuid.UUID, expiresAt *time.Time) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, repo.Insert(context.Background(), &model.Link{
		ID:          uuid.New(),
		OriginalURL: original,
		ShortCode:   code,
		OwnerID:     owner,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   expiresAt,
		IsActive:    true,
	}))
}

func doJSON(t *testing.T, r http.Handler, method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ownerCookie(a *auth.Auth, id uuid.UUID) *http.Cookie {
	return &http.Cookie{Name: "auth_token", Value: a.SignCookieValue(id)}
}

// Сценарий: создание с алиасом, затем повтор того же алиаса.
func TestShorten_CustomAlias(t *testing.T) {
	repo := newMockRepo()
	r, _ := newTestRouter(repo)

	w := doJSON(t, r, http.MethodPost, "/links/shorten",
		`{"original_url":"https://example.com/a","custom_alias":"abc"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var info model.LinkInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.True(t, strings.HasSuffix(info.ShortURL, "/abc"))
	assert.Equal(t, "https://example.com/a", info.OriginalURL)

	w = doJSON(t, r, http.MethodPost, "/links/shorten",
		`{"original_url":"https://example.com/b","custom_alias":"abc"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "alias already in use")
}

// Сценарий: создание без алиаса даёт код длины 6 из [a-zA-Z0-9_-].
func TestShorten_GeneratedCode(t *testing.T) {
	repo := newMockRepo()
	r, _ := newTestRouter(repo)

	w := doJSON(t, r, http.MethodPost, "/links/shorten",
		`{"original_url":"https://example.com"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var info model.LinkInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	segments := strings.Split(info.ShortURL, "/")
	assert.Regexp(t, `^[a-zA-Z0-9_-]{6}$`, segments[len(segments)-1])
}

func TestShorten_BadRequest(t *testing.T) {
	repo := newMockRepo()
	r, _ := newTestRouter(repo)

	w := doJSON(t, r, http.MethodPost, "/links/shorten", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/links/shorten", `{"custom_alias":"abc"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRedirect(t *testing.T) {
	repo := newMockRepo()
	r, _ := newTestRouter(repo)
	seed(t, repo, "abc", "https://example.com", nil, nil)

	w := doJSON(t, r, http.MethodGet, "/links/abc", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Location"))

	link, err := repo.GetByCode(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.ClickCount)
}

func TestRedirect_NotFound(t *testing.T) {
	repo := newMockRepo()
	r, _ := newTestRouter(repo)

	w := doJSON(t, r, http.MethodGet, "/links/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Сценарий: редирект по истёкшей ссылке — 410, счётчик не меняется.
func TestRedirect_Expired(t *testing.T) {
	repo := newMockRepo()
	r, _ := newTestRouter(repo)
	expired := time.Now().UTC().Add(-time.Hour)
	seed(t, repo, "old", "https://example.com", nil, &expired)

	w := doJSON(t, r, http.MethodGet, "/links/old", "", nil)
	assert.Equal(t, http.StatusGone, w.Code)

	link, err := repo.GetByCode(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, int64(0), link.ClickCount)
}

func TestDelete_Ownership(t *testing.T) {
	repo := newMockRepo()
	r, a := newTestRouter(repo)
	owner := uuid.New()
	seed(t, repo, "own", "https://example.com", &owner, nil)
	seed(t, repo, "anon", "https://example.org", nil, nil)

	// Анонимную ссылку не удалить даже с валидной кукой.
	w := doJSON(t, r, http.MethodDelete, "/links/anon", "", ownerCookie(a, owner))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Без куки и с чужой кукой — 403.
	w = doJSON(t, r, http.MethodDelete, "/links/own", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/links/own", "", ownerCookie(a, uuid.New()))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Владелец удаляет успешно.
	w = doJSON(t, r, http.MethodDelete, "/links/own", "", ownerCookie(a, owner))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/links/own", "", ownerCookie(a, owner))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdate(t *testing.T) {
	repo := newMockRepo()
	r, a := newTestRouter(repo)
	owner := uuid.New()
	seed(t, repo, "own", "https://example.com", &owner, nil)

	w := doJSON(t, r, http.MethodPut, "/links/own",
		`{"original_url":"https://example.org"}`, ownerCookie(a, uuid.New()))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPut, "/links/own",
		`{"original_url":"https://example.org"}`, ownerCookie(a, owner))
	require.Equal(t, http.StatusOK, w.Code)

	var info model.LinkInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "https://example.org", info.OriginalURL)

	w = doJSON(t, r, http.MethodPut, "/links/missing",
		`{"original_url":"https://example.org"}`, ownerCookie(a, owner))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Сценарий: поиск без учёта регистра; пустой результат — 200 и пустой массив.
func TestSearch(t *testing.T) {
	repo := newMockRepo()
	r, _ := newTestRouter(repo)
	seed(t, repo, "a1", "https://Example.com/a", nil, nil)

	w := doJSON(t, r, http.MethodGet, "/links/search?original_url=https%3A%2F%2Fexample.com", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var results []model.LinkInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "https://Example.com/a", results[0].OriginalURL)

	w = doJSON(t, r, http.MethodGet, "/links/search?original_url=https%3A%2F%2Fnothing.example", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/links/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats(t *testing.T) {
	repo := newMockRepo()
	r, a := newTestRouter(repo)
	owner := uuid.New()
	seed(t, repo, "own", "https://example.com", &owner, nil)
	seed(t, repo, "anon", "https://example.org", nil, nil)

	w := doJSON(t, r, http.MethodGet, "/links/own/stats", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/links/own/stats", "", ownerCookie(a, owner))
	require.Equal(t, http.StatusOK, w.Code)

	var stats model.LinkStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.True(t, stats.IsActive)
	assert.Equal(t, "https://example.com", stats.OriginalURL)

	// Статистика анонимной ссылки открыта.
	w = doJSON(t, r, http.MethodGet, "/links/anon/stats", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/links/ghost/stats", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIssueSession(t *testing.T) {
	repo := newMockRepo()
	r, _ := newTestRouter(repo)

	w := doJSON(t, r, http.MethodPost, "/auth/session", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := w.Result()
	defer resp.Body.Close()
	require.NotEmpty(t, resp.Cookies())
	assert.Equal(t, "auth_token", resp.Cookies()[0].Name)
}
