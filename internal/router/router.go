package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/takore/linkcut/internal/handlers"
	"github.com/takore/linkcut/internal/middleware"
	"go.uber.org/zap"
)

// NewRouter создаёт и настраивает маршрутизатор.
func NewRouter(handler *handlers.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.GzipMiddleware)

	r.Get("/ping", handler.Ping)
	r.Post("/auth/session", handler.IssueSession)

	r.Route("/links", func(r chi.Router) {
		r.Post("/shorten", handler.Shorten)
		// Статический /search имеет приоритет над /{code}.
		r.Get("/search", handler.Search)
		r.Get("/{code}", handler.Redirect)
		r.Delete("/{code}", handler.Delete)
		r.Put("/{code}", handler.Update)
		r.Get("/{code}/stats", handler.Stats)
	})

	return r
}
