// Package enrol реализует ручное зачисление пользователей на курс.
package enrol

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

// defaultRoleID роль "студент" на платформе.
const defaultRoleID = 5

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	EnrolUsers(ctx context.Context, courseID int, userIDs []int, roleID int) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.enrol"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.EnrolRequest
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

	roleID := req.RoleID
	if roleID == 0 {
		roleID = defaultRoleID
	}

	if err := h.service.EnrolUsers(r.Context(), req.CourseID, req.UserIDs, roleID); err != nil {
		log.Error("failed to enrol users", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to enrol users"))
		return
	}

	log.Info("users enrolled",
		slog.Int("course_id", req.CourseID),
		slog.Int("users_count", len(req.UserIDs)),
		slog.Int("role_id", roleID),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"enrolled_count": len(req.UserIDs),
	}))
}
