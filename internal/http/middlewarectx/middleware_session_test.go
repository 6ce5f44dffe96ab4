package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redcoes/dashboard-api/internal/lib/jwt"
	"github.com/redcoes/dashboard-api/internal/session"
)

type stubSessions struct {
	sessions map[string]*session.Session
}

func (s *stubSessions) Get(_ context.Context, id string) (*session.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	return sess, nil
}

func TestSessionMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	maker := jwt.NewMaker("test-key", time.Hour)

	sess := &session.Session{ID: "sess-1", Secret: "clave"}
	sessions := &stubSessions{sessions: map[string]*session.Session{"sess-1": sess}}

	validToken, err := maker.GenerateToken("sess-1")
	require.NoError(t, err)
	orphanToken, err := maker.GenerateToken("sess-gone")
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectSession  bool
	}{
		{
			name:           "валидный токен и живая сессия",
			authHeader:     "Bearer " + validToken,
			expectedStatus: http.StatusOK,
			expectSession:  true,
		},
		{
			name:           "нет заголовка",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "не bearer",
			authHeader:     "Basic abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "битый токен",
			authHeader:     "Bearer garbage",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "токен валиден, сессии нет",
			authHeader:     "Bearer " + orphanToken,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSession *session.Session
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSession, _ = SessionFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/courses", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			SessionMiddleware(maker, sessions, logger)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectSession {
				require.NotNil(t, gotSession)
				assert.Equal(t, "sess-1", gotSession.ID)
				assert.Equal(t, "clave", gotSession.Secret)
			} else {
				assert.Nil(t, gotSession)
			}
		})
	}
}
