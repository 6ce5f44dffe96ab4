// Package report реализует отчёт по заказам: фильтрация, метрики и
// помесячные срезы.
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
	Orders(ctx context.Context, sess *session.Session) ([]models.Order, error)
	FinishRender(ctx context.Context, sess *session.Session)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP строит отчёт: применяет фильтр, считает сумму и количество,
// раскладывает выручку по месяцам и заказы по датам.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.orders.report"

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

	var filter models.OrdersFilter
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}
	}

	orders, err := h.service.Orders(r.Context(), sess)
	if err != nil {
		log.Error("failed to load orders", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("failed to load orders"))
		return
	}
	h.service.FinishRender(r.Context(), sess)

	filtered, err := report.FilterOrders(orders, filter)
	if err != nil {
		log.Error("invalid orders filter", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	byMonth := report.MonthlyRollup(filtered,
		func(o models.Order) (int, bool) {
			if o.Month == nil {
				return 0, false
			}
			return *o.Month, true
		},
		func(o models.Order) float64 {
			if o.Total == nil {
				return 0
			}
			return *o.Total
		},
	)

	log.Info("orders report rendered",
		slog.Int("orders_count", len(filtered)),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"orders_count":   len(filtered),
		"total_amount":   report.SumOrderTotals(filtered),
		"products_count": report.Distinct(filtered, func(o models.Order) string { return o.Product }),
		"total_by_month": byMonth,
		"orders_by_date": report.OrdersByDate(filtered),
		"by_product":     report.ValueCounts(filtered, func(o models.Order) string { return o.Product }),
		"by_status":      report.ValueCounts(filtered, func(o models.Order) string { return o.Status }),
		"by_modality":    report.ValueCounts(filtered, func(o models.Order) string { return o.Modality }),
		"by_affiliation": report.ValueCounts(filtered, func(o models.Order) string { return o.Affiliation }),
		"orders":         report.SortOrdersByDateDesc(filtered),
	}))
}
