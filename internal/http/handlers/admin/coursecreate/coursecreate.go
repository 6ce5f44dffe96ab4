// Package coursecreate реализует создание курса на e-learning платформе.
package coursecreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/redcoes/dashboard-api/internal/clients/moodle"
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
	CreateCourse(ctx context.Context, fullName, shortName string, categoryID int) (*moodle.CreatedCourse, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.coursecreate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CreateCourseRequest
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

	created, err := h.service.CreateCourse(r.Context(), req.FullName, req.ShortName, req.CategoryID)
	if err != nil {
		log.Error("failed to create course", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to create course"))
		return
	}

	log.Info("course created",
		slog.Int("course_id", created.ID),
		slog.String("shortname", created.ShortName),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"course_id": created.ID,
		"shortname": created.ShortName,
	}))
}
