package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/takore/linkcut/internal/model"
)

func BenchmarkShorten(b *testing.B) {
	repo := newMockRepo()
	r, _ := newTestRouter(repo)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		body := `{"original_url":"https://example.com/bench"}`
		req := httptest.NewRequest(http.MethodPost, "/links/shorten", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
	}
}

func BenchmarkRedirect(b *testing.B) {
	repo := newMockRepo()
	r, _ := newTestRouter(repo)

	now := time.Now().UTC()
	_ = repo.Insert(context.Background(), &model.Link{
		ID:          uuid.New(),
		OriginalURL: "https://example.com",
		ShortCode:   "bench1",
		CreatedAt:   now,
		UpdatedAt:   now,
		IsActive:    true,
	})

	req := httptest.NewRequest(http.MethodGet, "/links/bench1", nil)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req.Clone(context.Background()))
	}
}
