package dashboard

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redcoes/dashboard-api/internal/clients/moodle"
	"github.com/redcoes/dashboard-api/internal/clients/wordpress"
	"github.com/redcoes/dashboard-api/internal/http/handlers/access/grant"
	"github.com/redcoes/dashboard-api/internal/http/handlers/access/refresh"
	"github.com/redcoes/dashboard-api/internal/http/handlers/admin/coursecreate"
	"github.com/redcoes/dashboard-api/internal/http/handlers/admin/courseimport"
	"github.com/redcoes/dashboard-api/internal/http/handlers/admin/enrol"
	"github.com/redcoes/dashboard-api/internal/http/handlers/courses/list"
	"github.com/redcoes/dashboard-api/internal/http/handlers/courses/participants"
	"github.com/redcoes/dashboard-api/internal/http/handlers/courses/schedule"
	"github.com/redcoes/dashboard-api/internal/http/handlers/courses/stats"
	"github.com/redcoes/dashboard-api/internal/http/handlers/health"
	membersreport "github.com/redcoes/dashboard-api/internal/http/handlers/members/report"
	ordersexport "github.com/redcoes/dashboard-api/internal/http/handlers/orders/export"
	ordersreport "github.com/redcoes/dashboard-api/internal/http/handlers/orders/report"
	productsreport "github.com/redcoes/dashboard-api/internal/http/handlers/products/report"
	userslist "github.com/redcoes/dashboard-api/internal/http/handlers/users/list"
	"github.com/redcoes/dashboard-api/internal/http/middlewarectx"
	"github.com/redcoes/dashboard-api/internal/lib/jwt"
	"github.com/redcoes/dashboard-api/internal/services/datasets"
	"github.com/redcoes/dashboard-api/internal/session"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, wpClient *wordpress.Client, moodleClient *moodle.Client, sessions *session.Store, tokens jwt.Maker, datasetService *datasets.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Вход по общему ключу — единственная открытая конечная точка
		r.Post("/access", grant.New(logger, wpClient, sessions, tokens).ServeHTTP)

		// Группа с аутентификацией по токену сессии
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(tokens, sessions, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/refresh", refresh.New(logger, sessions).ServeHTTP)

			r.Get("/courses", list.New(logger, datasetService).ServeHTTP)
			r.Get("/courses/running", schedule.New(logger, datasetService, schedule.Running).ServeHTTP)
			r.Get("/courses/upcoming", schedule.New(logger, datasetService, schedule.Upcoming).ServeHTTP)
			r.Get("/courses/finished", schedule.New(logger, datasetService, schedule.Finished).ServeHTTP)
			r.Get("/courses/{id}/participants", participants.New(logger, datasetService).ServeHTTP)
			r.Post("/courses/stats", stats.New(logger, datasetService).ServeHTTP)

			r.Get("/users", userslist.New(logger, datasetService).ServeHTTP)

			r.Post("/orders/report", ordersreport.New(logger, datasetService).ServeHTTP)
			r.Post("/orders/export", ordersexport.New(logger, datasetService).ServeHTTP)
			r.Post("/products/report", productsreport.New(logger, datasetService).ServeHTTP)
			r.Post("/members/report", membersreport.New(logger, datasetService).ServeHTTP)

			r.Post("/admin/enrolments", enrol.New(logger, moodleClient).ServeHTTP)
			r.Post("/admin/courses", coursecreate.New(logger, moodleClient).ServeHTTP)
			r.Post("/admin/courses/import", courseimport.New(logger, moodleClient).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
