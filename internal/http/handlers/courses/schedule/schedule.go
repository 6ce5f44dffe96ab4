// Package schedule реализует HTTP-обработчик витрин расписания курсов:
// идущие сейчас, ещё не начавшиеся и завершённые (последние 25).
//
// Для каждой строки считается количество участников; запросы к платформе
// идут параллельно, строки собираются по убыванию id.
package schedule

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/redcoes/dashboard-api/internal/http/middlewarectx"
	"github.com/redcoes/dashboard-api/internal/http/response"
	"github.com/redcoes/dashboard-api/internal/lib/sl"
	"github.com/redcoes/dashboard-api/internal/models"
	"github.com/redcoes/dashboard-api/internal/report"
	"github.com/redcoes/dashboard-api/internal/session"
)

// Partition какая часть расписания отдаётся обработчиком.
type Partition string

const (
	Running  Partition = "running"
	Upcoming Partition = "upcoming"
	Finished Partition = "finished"
)

// finishedLimit завершённых курсов показывается не больше этого числа.
const finishedLimit = 25

const displayDate = "02/01/2006"

// Row строка витрины расписания.
type Row struct {
	ID           int    `json:"id"`
	FullName     string `json:"nombre_del_curso"`
	Start        string `json:"fecha_de_inicio"`
	End          string `json:"fecha_de_finalizacion,omitempty"`
	Participants int    `json:"cantidad_de_participantes"`
}

type Handler struct {
	log       *slog.Logger
	service   Service
	partition Partition
	now       func() time.Time
}

// Service описывает выборку курсов и подсчёт участников.
type Service interface {
	Courses(ctx context.Context, sess *session.Session) ([]models.Course, error)
	ParticipantCounts(ctx context.Context, courseIDs []int) ([]int, error)
	FinishRender(ctx context.Context, sess *session.Session)
}

func New(log *slog.Logger, service Service, partition Partition) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		partition: partition,
		now:       time.Now,
	}
}

// NewWithClock как New, но с подменяемыми часами.
func NewWithClock(log *slog.Logger, service Service, partition Partition, now func() time.Time) *Handler {
	h := New(log, service, partition)
	h.now = now
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	op := "handlers.courses.schedule." + string(h.partition)

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

	now := h.now()
	var selected []models.Course
	switch h.partition {
	case Running:
		selected = report.SortCoursesByIDDesc(report.CoursesRunning(courses, now))
	case Upcoming:
		selected = report.SortCoursesByIDDesc(report.CoursesUpcoming(courses, now))
	case Finished:
		selected = report.CoursesFinished(courses, now, finishedLimit)
	}

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

	rows := make([]Row, len(selected))
	for i, c := range selected {
		row := Row{
			ID:           c.ID,
			FullName:     c.FullName,
			Start:        c.Start.Format(displayDate),
			Participants: counts[i],
		}
		if c.End != nil {
			row.End = c.End.Format(displayDate)
		}
		rows[i] = row
	}

	log.Info("schedule rendered", slog.Int("count", len(rows)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"courses_count": len(rows),
		"courses":       rows,
	}))
}
