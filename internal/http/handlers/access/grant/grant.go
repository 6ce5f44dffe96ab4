// Package grant реализует HTTP-обработчик входа по общему ключу доступа.
//
// Handler проверяет ключ через удалённый эндпоинт верификации, при успехе
// заводит сессию с этим ключом и возвращает подписанный токен сессии.
// Отказ по ключу и недоступность апстрима отдаются разными ошибками:
// первый лечится повторным вводом, вторая — повтором позже.
package grant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/redcoes/dashboard-api/internal/clients/wordpress"
	"github.com/redcoes/dashboard-api/internal/http/response"
	"github.com/redcoes/dashboard-api/internal/lib/sl"
	"github.com/redcoes/dashboard-api/internal/session"
)

// Handler управляет запросами на вход в дашборд.
type Handler struct {
	log      *slog.Logger
	verifier Verifier
	sessions SessionCreator
	tokens   TokenMaker
	validate *validator.Validate
}

// Verifier описывает проверку ключа доступа удалённым эндпоинтом.
type Verifier interface {
	VerifyKey(ctx context.Context, key string) error
}

// SessionCreator заводит сессию для подтверждённого ключа.
type SessionCreator interface {
	Create(ctx context.Context, secret string) (*session.Session, error)
}

// TokenMaker выпускает токен сессии.
type TokenMaker interface {
	GenerateToken(sessionID string) (string, error)
}

// Request тело запроса входа.
type Request struct {
	Key string `json:"key" validate:"required"`
}

// New создаёт новый Handler.
func New(log *slog.Logger, verifier Verifier, sessions SessionCreator, tokens TokenMaker) *Handler {
	return &Handler{
		log:      log,
		verifier: verifier,
		sessions: sessions,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// ServeHTTP обрабатывает запрос входа: верификация ключа, создание сессии,
// выпуск токена.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access.grant"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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

	if err := h.verifier.VerifyKey(r.Context(), req.Key); err != nil {
		if errors.Is(err, wordpress.ErrKeyRejected) {
			log.Info("access denied")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("access denied"))
			return
		}
		log.Error("key verification unavailable", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("verification service unavailable"))
		return
	}

	sess, err := h.sessions.Create(r.Context(), req.Key)
	if err != nil {
		log.Error("failed to create session", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create session"))
		return
	}

	token, err := h.tokens.GenerateToken(sess.ID)
	if err != nil {
		log.Error("failed to issue session token", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to issue session token"))
		return
	}

	log.Info("access granted", slog.String("session_id", sess.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
	}))
}
