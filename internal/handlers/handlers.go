package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/takore/linkcut/internal/auth"
	"github.com/takore/linkcut/internal/model"
	"github.com/takore/linkcut/internal/service"
	"go.uber.org/zap"
)

// Handler обслуживает HTTP-эндпоинты сервиса ссылок.
type Handler struct {
	Service *service.LinkService
	Auth    *auth.Auth
	Logger  *zap.Logger
}

// NewHandler создаёт обработчик поверх сервиса ссылок.
func NewHandler(svc *service.LinkService, a *auth.Auth, logger *zap.Logger) *Handler {
	return &Handler{Service: svc, Auth: a, Logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Shorten создаёт короткую ссылку. Принципал опционален: без куки
// создаётся анонимная ссылка.
func (h *Handler) Shorten(res http.ResponseWriter, req *http.Request) {
	var body model.ShortenRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		h.writeError(res, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.OriginalURL == "" {
		h.writeError(res, http.StatusBadRequest, "original_url is required")
		return
	}

	principal := h.Auth.CurrentPrincipal(req)
	info, err := h.Service.Create(req.Context(), body, principal)
	if err != nil {
		h.writeServiceError(res, err)
		return
	}
	h.writeJSON(res, http.StatusOK, info)
}

// Redirect отвечает 302 с оригинальным URL в Location.
func (h *Handler) Redirect(res http.ResponseWriter, req *http.Request) {
	code := chi.URLParam(req, "code")
	original, err := h.Service.Resolve(req.Context(), code)
	if err != nil {
		h.writeServiceError(res, err)
		return
	}
	http.Redirect(res, req, original, http.StatusFound)
}

// Delete удаляет ссылку; право на удаление проверяет сервис.
func (h *Handler) Delete(res http.ResponseWriter, req *http.Request) {
	code := chi.URLParam(req, "code")
	principal := h.Auth.CurrentPrincipal(req)

	if err := h.Service.Delete(req.Context(), code, principal); err != nil {
		h.writeServiceError(res, err)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

// Update применяет частичное обновление ссылки.
func (h *Handler) Update(res http.ResponseWriter, req *http.Request) {
	code := chi.URLParam(req, "code")

	var patch model.UpdateRequest
	if err := json.NewDecoder(req.Body).Decode(&patch); err != nil {
		h.writeError(res, http.StatusBadRequest, "invalid JSON body")
		return
	}

	principal := h.Auth.CurrentPrincipal(req)
	info, err := h.Service.Update(req.Context(), code, patch, principal)
	if err != nil {
		h.writeServiceError(res, err)
		return
	}
	h.writeJSON(res, http.StatusOK, info)
}

// Search ищет ссылки по префиксу оригинального URL.
// Отсутствие совпадений — это 200 с пустым массивом.
func (h *Handler) Search(res http.ResponseWriter, req *http.Request) {
	original := req.URL.Query().Get("original_url")
	if original == "" {
		h.writeError(res, http.StatusBadRequest, "original_url query parameter is required")
		return
	}

	results, err := h.Service.Search(req.Context(), original)
	if err != nil {
		h.writeServiceError(res, err)
		return
	}
	h.writeJSON(res, http.StatusOK, results)
}

// Stats возвращает статистику ссылки с учётом правил владения.
func (h *Handler) Stats(res http.ResponseWriter, req *http.Request) {
	code := chi.URLParam(req, "code")
	principal := h.Auth.CurrentPrincipal(req)

	stats, err := h.Service.Stats(req.Context(), code, principal)
	if err != nil {
		h.writeServiceError(res, err)
		return
	}
	h.writeJSON(res, http.StatusOK, stats)
}

// IssueSession выдаёт клиенту подписанную куку с новым идентификатором.
func (h *Handler) IssueSession(res http.ResponseWriter, req *http.Request) {
	principal := h.Auth.IssueSession(res)
	h.writeJSON(res, http.StatusOK, map[string]string{"user_id": principal.ID.String()})
}

// Ping проверяет доступность хранилища.
func (h *Handler) Ping(res http.ResponseWriter, req *http.Request) {
	if err := h.Service.Ping(req.Context()); err != nil {
		h.Logger.Error("storage ping failed", zap.Error(err))
		h.writeError(res, http.StatusInternalServerError, "storage unavailable")
		return
	}
	res.WriteHeader(http.StatusOK)
}

// writeServiceError транслирует доменные ошибки в HTTP-статусы.
// Всё нераспознанное — 500 без внутренних подробностей в теле.
func (h *Handler) writeServiceError(res http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.writeError(res, http.StatusNotFound, "short link not found")
	case errors.Is(err, service.ErrExpired):
		h.writeError(res, http.StatusGone, "link has expired")
	case errors.Is(err, service.ErrForbidden):
		h.writeError(res, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAliasTaken):
		h.writeError(res, http.StatusBadRequest, "alias already in use")
	case errors.Is(err, service.ErrInvalidAlias), errors.Is(err, service.ErrInvalidURL):
		h.writeError(res, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrGenerationExhausted):
		h.Logger.Error("short code generation exhausted", zap.Error(err))
		h.writeError(res, http.StatusInternalServerError, "could not allocate short code")
	default:
		h.Logger.Error("unhandled service error", zap.Error(err))
		h.writeError(res, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) writeError(res http.ResponseWriter, status int, msg string) {
	h.writeJSON(res, status, errorResponse{Error: msg})
}

func (h *Handler) writeJSON(res http.ResponseWriter, status int, v interface{}) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		h.Logger.Error("failed to encode response", zap.Error(err))
	}
}
