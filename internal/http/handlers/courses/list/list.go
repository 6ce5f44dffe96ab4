package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/redcoes/dashboard-api/internal/http/middlewarectx"
	"github.com/redcoes/dashboard-api/internal/http/response"
	"github.com/redcoes/dashboard-api/internal/lib/sl"
	"github.com/redcoes/dashboard-api/internal/models"
	"github.com/redcoes/dashboard-api/internal/report"
	"github.com/redcoes/dashboard-api/internal/session"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выборку курсов.
type Service interface {
	Courses(ctx context.Context, sess *session.Session) ([]models.Course, error)
	FinishRender(ctx context.Context, sess *session.Session)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.courses.list"

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

	courses, err := h.service.Courses(r.Context(), sess)
	if err != nil {
		log.Error("failed to load courses", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to load courses"))
		return
	}
	h.service.FinishRender(r.Context(), sess)

	sorted := report.SortCoursesByIDDesc(courses)

	log.Info("courses listed", slog.Int("count", len(sorted)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"courses_count": len(sorted),
		"courses":       sorted,
	}))
}
