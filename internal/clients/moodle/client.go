// Package moodle реализует клиент REST веб-сервиса Moodle.
//
// Все вызовы — form-encoded POST на один эндпоинт с параметрами wstoken,
// wsfunction и moodlewsrestformat=json; имя удалённой функции определяет
// форму ответа.
package moodle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redcoes/dashboard-api/internal/metrics"
)

const (
	fnGetCourses       = "core_course_get_courses"
	fnGetEnrolledUsers = "core_enrol_get_enrolled_users"
	fnGetUsers         = "core_user_get_users"
	fnEnrolUsers       = "enrol_manual_enrol_users"
	fnCreateCourses    = "core_course_create_courses"
	fnImportCourse     = "core_course_import_course"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient создаёт клиент веб-сервиса. Нулевой timeout оставляет запросы
// без ограничения по времени.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// call выполняет одну удалённую функцию и декодирует ответ в out (nil — ответ
// не нужен). Объект с полем exception в теле — ошибка вызова, не транспорта.
func (c *Client) call(ctx context.Context, wsfunction string, params url.Values, out any) error {
	op := "moodle." + wsfunction
	start := time.Now()

	form := url.Values{}
	form.Set("wstoken", c.token)
	form.Set("wsfunction", wsfunction)
	form.Set("moodlewsrestformat", "json")
	for k, vs := range params {
		for _, v := range vs {
			form.Add(k, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	metrics.ObserveUpstream("moodle", wsfunction, start, err)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if apiErr := decodeAPIError(body); apiErr != nil {
		return fmt.Errorf("%s: %w", op, apiErr)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: malformed response: %w", op, err)
	}
	return nil
}

func decodeAPIError(body []byte) *APIError {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var apiErr APIError
	if err := json.Unmarshal(trimmed, &apiErr); err != nil {
		return nil
	}
	if apiErr.Exception == "" {
		return nil
	}
	return &apiErr
}

// Courses возвращает список всех курсов.
func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.call(ctx, fnGetCourses, nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// EnrolledUsers возвращает зачисленных на курс пользователей.
func (c *Client) EnrolledUsers(ctx context.Context, courseID int) ([]User, error) {
	params := url.Values{}
	params.Set("courseid", strconv.Itoa(courseID))

	var users []User
	if err := c.call(ctx, fnGetEnrolledUsers, params, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Users возвращает всех пользователей платформы (пустой критерий поиска).
func (c *Client) Users(ctx context.Context) ([]User, error) {
	params := url.Values{}
	params.Set("criteria[0][key]", "")
	params.Set("criteria[0][value]", "")

	var resp usersResponse
	if err := c.call(ctx, fnGetUsers, params, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// EnrolUsers выполняет ручное зачисление пользователей на курс с одной ролью.
func (c *Client) EnrolUsers(ctx context.Context, courseID int, userIDs []int, roleID int) error {
	params := url.Values{}
	for i, uid := range userIDs {
		params.Set(fmt.Sprintf("enrolments[%d][roleid]", i), strconv.Itoa(roleID))
		params.Set(fmt.Sprintf("enrolments[%d][userid]", i), strconv.Itoa(uid))
		params.Set(fmt.Sprintf("enrolments[%d][courseid]", i), strconv.Itoa(courseID))
	}
	return c.call(ctx, fnEnrolUsers, params, nil)
}

// CreateCourse создаёт курс и возвращает его id с коротким именем.
func (c *Client) CreateCourse(ctx context.Context, fullName, shortName string, categoryID int) (*CreatedCourse, error) {
	params := url.Values{}
	params.Set("courses[0][fullname]", fullName)
	params.Set("courses[0][shortname]", shortName)
	params.Set("courses[0][categoryid]", strconv.Itoa(categoryID))

	var created []CreatedCourse
	if err := c.call(ctx, fnCreateCourses, params, &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("moodle.%s: empty response", fnCreateCourses)
	}
	return &created[0], nil
}

// ImportCourse импортирует содержимое одного курса в другой.
func (c *Client) ImportCourse(ctx context.Context, sourceCourseID, targetCourseID int) error {
	params := url.Values{}
	params.Set("importfrom", strconv.Itoa(sourceCourseID))
	params.Set("importto", strconv.Itoa(targetCourseID))
	return c.call(ctx, fnImportCourse, params, nil)
}
