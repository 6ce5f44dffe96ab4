package report_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/redcoes/dashboard-api/internal/http/handlers/members/report"
	"github.com/redcoes/dashboard-api/internal/http/middlewarectx"
	"github.com/redcoes/dashboard-api/internal/models"
	"github.com/redcoes/dashboard-api/internal/session"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Members(ctx context.Context, sess *session.Session) ([]models.Member, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Member), args.Error(1)
}

func (m *MockService) FinishRender(ctx context.Context, sess *session.Session) {
	m.Called(ctx, sess)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func withSession(r *http.Request, sess *session.Session) *http.Request {
	ctx := context.WithValue(r.Context(), middlewarectx.SessionKey, sess)
	return r.WithContext(ctx)
}

func intPtr(i int) *int { return &i }

func timePtr(t time.Time) *time.Time { return &t }

func sampleMembers() []models.Member {
	feb := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	sep := time.Date(2024, 9, 20, 0, 0, 0, 0, time.UTC)
	return []models.Member{
		{
			Email: "a@example.com", Start: timePtr(feb), Level: "miembro",
			AccountState: "active", Year: intPtr(2024), Month: intPtr(2), MonthName: "Febrero",
		},
		{
			Email: "a@example.com", Start: timePtr(sep), Level: "miembro",
			AccountState: "active", Year: intPtr(2024), Month: intPtr(9), MonthName: "Septiembre",
		},
		{
			Email: "b@example.com", Level: "no miembro", AccountState: "pending",
		},
	}
}

func TestHandler_Report(t *testing.T) {
	sess := &session.Session{ID: "sid", Secret: "key"}

	svc := new(MockService)
	svc.On("Members", mock.Anything, sess).Return(sampleMembers(), nil)
	svc.On("FinishRender", mock.Anything, sess).Return()

	handler := report.New(discardLogger(), svc)

	req := withSession(httptest.NewRequest(http.MethodPost, "/members/report", nil), sess)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data struct {
			Count  int `json:"members_count"`
			Emails int `json:"emails_count"`
			Months []struct {
				Month int     `json:"mes_numero"`
				Value float64 `json:"valor"`
			} `json:"new_by_month"`
			Members []models.Member `json:"members"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	assert.Equal(t, 3, body.Data.Count)
	assert.Equal(t, 2, body.Data.Emails)

	require.Len(t, body.Data.Months, 12)
	assert.InDelta(t, 1, body.Data.Months[1].Value, 0.001)
	assert.InDelta(t, 1, body.Data.Months[8].Value, 0.001)

	// Членство без даты начала уходит в конец.
	require.Len(t, body.Data.Members, 3)
	assert.Equal(t, "b@example.com", body.Data.Members[2].Email)
	svc.AssertExpectations(t)
}

func TestHandler_ReportMonthFilter(t *testing.T) {
	sess := &session.Session{ID: "sid", Secret: "key"}

	cases := []struct {
		name      string
		filter    string
		wantCount int
	}{
		{
			name:      "Диапазон по месяцам исключает строки без даты",
			filter:    `{"month_from":"Enero","month_to":"Diciembre"}`,
			wantCount: 2,
		},
		{
			name:      "Перевёрнутый диапазон даёт пустой отчёт",
			filter:    `{"month_from":"Septiembre","month_to":"Febrero"}`,
			wantCount: 0,
		},
		{
			name:      "Фильтр по уровню",
			filter:    `{"levels":["no miembro"]}`,
			wantCount: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Members", mock.Anything, sess).Return(sampleMembers(), nil)
			svc.On("FinishRender", mock.Anything, sess).Return()

			handler := report.New(discardLogger(), svc)

			req := withSession(httptest.NewRequest(http.MethodPost, "/members/report", strings.NewReader(tc.filter)), sess)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)

			var body struct {
				Data struct {
					Count int `json:"members_count"`
				} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.wantCount, body.Data.Count)
		})
	}
}

func TestHandler_ReportErrors(t *testing.T) {
	sess := &session.Session{ID: "sid", Secret: "key"}

	t.Run("Апстрим недоступен", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Members", mock.Anything, sess).Return(nil, assert.AnError)

		handler := report.New(discardLogger(), svc)

		req := withSession(httptest.NewRequest(http.MethodPost, "/members/report", nil), sess)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("Неизвестный месяц", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Members", mock.Anything, sess).Return(sampleMembers(), nil)
		svc.On("FinishRender", mock.Anything, sess).Return()

		handler := report.New(discardLogger(), svc)

		body := strings.NewReader(`{"month_from":"Smarch","month_to":"Junio"}`)
		req := withSession(httptest.NewRequest(http.MethodPost, "/members/report", body), sess)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})
}
