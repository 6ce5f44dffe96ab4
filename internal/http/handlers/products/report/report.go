// Package report реализует отчёт по товарам: фильтры, диапазон по названиям
// и представление "уникальные товары".
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
	Products(ctx context.Context, sess *session.Session) ([]models.Product, error)
	FinishRender(ctx context.Context, sess *session.Session)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP строит отчёт по товарам. Счётчики вариаций и имён считаются
// до дедупликации; сами строки при unique схлопываются до одной вариации
// на имя (с максимальным id).
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.products.report"

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

	var filter models.ProductsFilter
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}
	}

	products, err := h.service.Products(r.Context(), sess)
	if err != nil {
		log.Error("failed to load products", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to load products"))
		return
	}
	h.service.FinishRender(r.Context(), sess)

	filtered, err := report.FilterProducts(products, filter)
	if err != nil {
		log.Error("invalid products filter", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	rows := report.SortProductsByIDDesc(filtered)
	if filter.Unique {
		rows = report.UniqueProducts(filtered)
	}

	log.Info("products report rendered",
		slog.Int("variations_count", len(filtered)),
		slog.Int("rows_count", len(rows)),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"variations_count": len(filtered),
		"names_count":      report.Distinct(filtered, func(p models.Product) string { return p.Name }),
		"by_status":        report.ValueCounts(rows, func(p models.Product) string { return p.Status }),
		"by_modality":      report.ValueCounts(rows, func(p models.Product) string { return p.Modality }),
		"by_affiliation":   report.ValueCounts(rows, func(p models.Product) string { return p.Affiliation }),
		"products":         rows,
	}))
}
