// Package export отдаёт отфильтрованные заказы файлом XLSX.
package export

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	xlsx "github.com/redcoes/dashboard-api/internal/export"
	"github.com/redcoes/dashboard-api/internal/http/middlewarectx"
	"github.com/redcoes/dashboard-api/internal/http/response"
	"github.com/redcoes/dashboard-api/internal/lib/sl"
	"github.com/redcoes/dashboard-api/internal/models"
	"github.com/redcoes/dashboard-api/internal/report"
	"github.com/redcoes/dashboard-api/internal/session"
)

const (
	fileName    = "pedidos_redcoes.xlsx"
	contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
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

// ServeHTTP применяет тот же фильтр, что и отчёт, и отдаёт результат
// вложением XLSX.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.orders.export"

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

	buf, err := xlsx.OrdersXLSX(report.SortOrdersByDateDesc(filtered))
	if err != nil {
		log.Error("failed to build xlsx", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to build export file"))
		return
	}

	log.Info("orders exported", slog.Int("orders_count", len(filtered)))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
