// Package courseimport реализует перенос содержимого одного курса в другой.
package courseimport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/redcoes/dashboard-api/internal/http/response"
	"github.com/redcoes/dashboard-api/internal/lib/sl"
	"github.com/redcoes/dashboard-api/internal/models"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	ImportCourse(ctx context.Context, sourceCourseID, targetCourseID int) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.courseimport"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ImportCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.ImportCourse(r.Context(), req.SourceCourseID, req.TargetCourseID); err != nil {
		log.Error("failed to import course", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to import course"))
		return
	}

	log.Info("course imported",
		slog.Int("source_course_id", req.SourceCourseID),
		slog.Int("target_course_id", req.TargetCourseID),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"imported": true,
	}))
}
