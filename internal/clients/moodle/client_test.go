package moodle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Courses(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"wstoken":            r.PostForm.Get("wstoken"),
			"wsfunction":         r.PostForm.Get("wsfunction"),
			"moodlewsrestformat": r.PostForm.Get("moodlewsrestformat"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":7,"fullname":"Curso de NIIF","shortname":"niif","categoryid":3,"startdate":1717200000,"enddate":1719800000}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "service-token", time.Second)
	courses, err := client.Courses(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "service-token", gotForm["wstoken"])
	assert.Equal(t, "core_course_get_courses", gotForm["wsfunction"])
	assert.Equal(t, "json", gotForm["moodlewsrestformat"])

	require.Len(t, courses, 1)
	assert.Equal(t, 7, courses[0].ID)
	assert.Equal(t, "Curso de NIIF", courses[0].FullName)
	assert.Equal(t, int64(1717200000), courses[0].StartDate)
}

func TestClient_Courses_ExceptionPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Moodle отдаёт 200 и объект ошибки вместо массива
		_, _ = w.Write([]byte(`{"exception":"moodle_exception","errorcode":"invalidtoken","message":"Invalid token"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad-token", time.Second)
	_, err := client.Courses(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalidtoken", apiErr.ErrorCode)
}

func TestClient_EnrolledUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "core_enrol_get_enrolled_users", r.PostForm.Get("wsfunction"))
		assert.Equal(t, "42", r.PostForm.Get("courseid"))
		_, _ = w.Write([]byte(`[{"id":1,"fullname":"Ana","email":"ana@example.com","customfields":[{"shortname":"tipoinscripcion","value":"socio"}]}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "t", time.Second)
	users, err := client.EnrolledUsers(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].FullName)
	require.Len(t, users[0].CustomFields, 1)
	assert.Equal(t, "socio", users[0].CustomFields[0].Value)
}

func TestClient_Users(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "core_user_get_users", r.PostForm.Get("wsfunction"))
		assert.Contains(t, r.PostForm, "criteria[0][key]")
		_, _ = w.Write([]byte(`{"users":[{"id":9,"fullname":"Luis","email":"luis@example.com","city":"San Salvador","country":"SV"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "t", time.Second)
	users, err := client.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "San Salvador", users[0].City)
}

func TestClient_EnrolUsers_IndexedParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "enrol_manual_enrol_users", r.PostForm.Get("wsfunction"))
		assert.Equal(t, "5", r.PostForm.Get("enrolments[0][roleid]"))
		assert.Equal(t, "11", r.PostForm.Get("enrolments[0][userid]"))
		assert.Equal(t, "3", r.PostForm.Get("enrolments[0][courseid]"))
		assert.Equal(t, "12", r.PostForm.Get("enrolments[1][userid]"))
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "t", time.Second)
	err := client.EnrolUsers(context.Background(), 3, []int{11, 12}, 5)
	assert.NoError(t, err)
}

func TestClient_CreateCourse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "core_course_create_courses", r.PostForm.Get("wsfunction"))
		assert.Equal(t, "Curso nuevo", r.PostForm.Get("courses[0][fullname]"))
		_, _ = w.Write([]byte(`[{"id":101,"shortname":"nuevo"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "t", time.Second)
	created, err := client.CreateCourse(context.Background(), "Curso nuevo", "nuevo", 2)
	require.NoError(t, err)
	assert.Equal(t, 101, created.ID)
}

func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // закрыт до запроса

	client := NewClient(srv.URL, "t", time.Second)
	_, err := client.Courses(context.Background())
	assert.Error(t, err)
}
