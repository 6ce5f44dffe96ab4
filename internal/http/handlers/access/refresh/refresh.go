// Package refresh реализует HTTP-обработчик запроса "обновить данные".
//
// Взводит флаг обновления сессии: следующий проход любого отчёта перечитает
// свои датасеты из апстримов вместо кеша.
package refresh

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/redcoes/dashboard-api/internal/http/middlewarectx"
	"github.com/redcoes/dashboard-api/internal/http/response"
	"github.com/redcoes/dashboard-api/internal/lib/sl"
)

type Handler struct {
	log      *slog.Logger
	sessions SessionStore
}

// SessionStore описывает взведение флага обновления.
type SessionStore interface {
	SetRefresh(ctx context.Context, id string, refresh bool) error
}

func New(log *slog.Logger, sessions SessionStore) *Handler {
	return &Handler{
		log:      log,
		sessions: sessions,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		log.Error("session not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.sessions.SetRefresh(r.Context(), sess.ID, true); err != nil {
		log.Error("failed to set refresh flag", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to schedule refresh"))
		return
	}

	log.Info("refresh scheduled", slog.String("session_id", sess.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"refresh": true,
	}))
}
