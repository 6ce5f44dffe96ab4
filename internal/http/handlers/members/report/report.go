// Package report реализует отчёт по членствам ассоциации.
package report

import (
	"context"
	"encoding/json"
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

type Service interface {
	Members(ctx context.Context, sess *session.Session) ([]models.Member, error)
	FinishRender(ctx context.Context, sess *session.Session)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP строит отчёт: применяет фильтр, считает уникальные email,
// раскладывает новые членства по месяцам.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.members.report"

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

	var filter models.MembersFilter
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}
	}

	members, err := h.service.Members(r.Context(), sess)
	if err != nil {
		log.Error("failed to load members", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to load members"))
		return
	}
	h.service.FinishRender(r.Context(), sess)

	filtered, err := report.FilterMembers(members, filter)
	if err != nil {
		log.Error("invalid members filter", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	newByMonth := report.MonthlyRollup(filtered,
		func(m models.Member) (int, bool) {
			if m.Month == nil {
				return 0, false
			}
			return *m.Month, true
		},
		func(models.Member) float64 { return 1 },
	)

	log.Info("members report rendered",
		slog.Int("members_count", len(filtered)),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"members_count": len(filtered),
		"emails_count":  report.Distinct(filtered, func(m models.Member) string { return m.Email }),
		"new_by_month":  newByMonth,
		"by_level":      report.ValueCounts(filtered, func(m models.Member) string { return m.Level }),
		"by_state":      report.ValueCounts(filtered, func(m models.Member) string { return m.AccountState }),
		"members":       report.SortMembersByStartDesc(filtered),
	}))
}
