// Package stats считает помесячную сводку по курсам за год: сколько курсов
// стартовало в каждом месяце диапазона и сколько участников они собрали.
package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/redcoes/dashboard-api/internal/http/middlewarectx"
	"github.com/redcoes/dashboard-api/internal/http/response"
	"github.com/redcoes/dashboard-api/internal/lib/sl"
	"github.com/redcoes/dashboard-api/internal/models"
	"github.com/redcoes/dashboard-api/internal/report"
	"github.com/redcoes/dashboard-api/internal/session"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает выборку курсов и подсчёт участников.
type Service interface {
	Courses(ctx context.Context, sess *session.Session) ([]models.Course, error)
	ParticipantCounts(ctx context.Context, courseIDs []int) ([]int, error)
	FinishRender(ctx context.Context, sess *session.Session)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

type courseCount struct {
	course models.Course
	count  int
}

// ServeHTTP строит сводку: фильтр по году и диапазону месяцев, затем два
// помесячных среза — количество курсов и суммарное число участников.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.courses.stats"

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

	var filter models.CourseStatsFilter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(filter); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	mr, err := report.ResolveMonthRange(filter.MonthFrom, filter.MonthTo)
	if err != nil {
		log.Error("invalid month range", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
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

	selected := report.FilterCoursesByPeriod(courses, filter.Year, mr)

	ids := make([]int, len(selected))
	for i, c := range selected {
		ids[i] = c.ID
	}
	counts, err := h.service.ParticipantCounts(r.Context(), ids)
	if err != nil {
		log.Error("failed to count participants", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to count participants"))
		return
	}

	joined := make([]courseCount, len(selected))
	for i, c := range selected {
		joined[i] = courseCount{course: c, count: counts[i]}
	}

	coursesPerMonth := report.MonthlyRollup(joined,
		func(cc courseCount) (int, bool) { return cc.course.Month, true },
		func(courseCount) float64 { return 1 },
	)
	participantsPerMonth := report.MonthlyRollup(joined,
		func(cc courseCount) (int, bool) { return cc.course.Month, true },
		func(cc courseCount) float64 { return float64(cc.count) },
	)

	total := 0
	for _, cc := range joined {
		total += cc.count
	}

	log.Info("course stats rendered",
		slog.Int("year", filter.Year),
		slog.Int("courses_count", len(selected)),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"courses_count":          len(selected),
		"participants_total":     total,
		"courses_per_month":      coursesPerMonth,
		"participants_per_month": participantsPerMonth,
	}))
}
