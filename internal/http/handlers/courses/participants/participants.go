// Package participants отдаёт список зачисленных на конкретный курс.
package participants

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/redcoes/dashboard-api/internal/http/middlewarectx"
	"github.com/redcoes/dashboard-api/internal/http/response"
	"github.com/redcoes/dashboard-api/internal/lib/sl"
	"github.com/redcoes/dashboard-api/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выборку участников курса. Списки участников не
// кэшируются, каждый запрос уходит на платформу.
type Service interface {
	Participants(ctx context.Context, courseID int) ([]models.Participant, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.courses.participants.List"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if _, ok := middlewarectx.SessionFromContext(r.Context()); !ok {
		log.Error("session not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	courseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || courseID <= 0 {
		log.Error("invalid course id", slog.String("raw", chi.URLParam(r, "id")))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid course id"))
		return
	}

	list, err := h.service.Participants(r.Context(), courseID)
	if err != nil {
		log.Error("failed to load participants", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to load participants"))
		return
	}

	log.Info("participants listed",
		slog.Int("course_id", courseID),
		slog.Int("count", len(list)),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"participants_count": len(list),
		"participants":       list,
	}))
}
