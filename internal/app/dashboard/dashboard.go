// Package dashboard собирает приложение отчётного дашборда: подключения,
// сервисы, маршруты и жизненный цикл HTTP-сервера.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/redcoes/dashboard-api/internal/cache"
	"github.com/redcoes/dashboard-api/internal/clients/moodle"
	"github.com/redcoes/dashboard-api/internal/clients/wordpress"
	"github.com/redcoes/dashboard-api/internal/config"
	"github.com/redcoes/dashboard-api/internal/lib/jwt"
	"github.com/redcoes/dashboard-api/internal/services/datasets"
	"github.com/redcoes/dashboard-api/internal/session"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	cache  *cache.Cache
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(cacheRedis, cfg.SessionTTL)
	tokens := jwt.NewMaker(cfg.JWTSecretKey, cfg.SessionTTL)

	moodleClient := moodle.NewClient(cfg.Moodle.BaseURL, cfg.Token, cfg.Moodle.Timeout)
	wpClient := wordpress.NewClient(cfg.Wordpress.BaseURL, cfg.Wordpress.Timeout, cfg.VerifyTimeout)

	datasetService := datasets.New(moodleClient, wpClient, cacheRedis, sessions, logger, cfg.DatasetTTL, cfg.FanoutLimit)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, wpClient, moodleClient, sessions, tokens, datasetService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		cache:  cacheRedis,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.cache.Db.Close()
		return err
	}
}
