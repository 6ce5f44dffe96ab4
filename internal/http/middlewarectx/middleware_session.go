// Package middlewarectx содержит HTTP middleware дашборда.
//
// SessionMiddleware проверяет токен сессии в заголовке Authorization,
// поднимает запись сессии из хранилища и кладёт её в контекст запроса.
// Без валидного токена и живой сессии запрос получает 401.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/redcoes/dashboard-api/internal/http/response"
	"github.com/redcoes/dashboard-api/internal/lib/jwt"
	"github.com/redcoes/dashboard-api/internal/lib/sl"
	"github.com/redcoes/dashboard-api/internal/session"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// SessionKey — ключ записи сессии в контексте.
const SessionKey Key = "session"

// TokenParser описывает разбор токена сессии.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.SessionClaims, error)
}

// SessionGetter описывает чтение сессии из хранилища.
type SessionGetter interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// SessionMiddleware возвращает middleware, который аутентифицирует запрос
// по токену сессии.
func SessionMiddleware(parser TokenParser, sessions SessionGetter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			sess, err := sessions.Get(r.Context(), claims.SessionID)
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					log.Error("session expired or unknown", slog.String("session_id", claims.SessionID))
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error("session expired"))
					return
				}
				log.Error("failed to load session", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to load session"))
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext достаёт сессию, положенную SessionMiddleware.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(SessionKey).(*session.Session)
	return sess, ok
}
