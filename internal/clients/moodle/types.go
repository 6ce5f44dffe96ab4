package moodle

import "fmt"

// Course сырой курс из core_course_get_courses. Даты — unix-секунды,
// ноль означает отсутствие даты.
type Course struct {
	ID         int    `json:"id"`
	FullName   string `json:"fullname"`
	ShortName  string `json:"shortname"`
	CategoryID int    `json:"categoryid"`
	StartDate  int64  `json:"startdate"`
	EndDate    int64  `json:"enddate"`
}

// CustomField пользовательское поле профиля, ищется по короткому имени.
type CustomField struct {
	ShortName string `json:"shortname"`
	Value     string `json:"value"`
}

// User сырой пользователь из core_user_get_users и core_enrol_get_enrolled_users.
type User struct {
	ID           int           `json:"id"`
	FullName     string        `json:"fullname"`
	Email        string        `json:"email"`
	City         string        `json:"city"`
	Country      string        `json:"country"`
	CustomFields []CustomField `json:"customfields"`
}

type usersResponse struct {
	Users []User `json:"users"`
}

// CreatedCourse ответ core_course_create_courses.
type CreatedCourse struct {
	ID        int    `json:"id"`
	ShortName string `json:"shortname"`
}

// APIError тело ошибки веб-сервиса: Moodle отвечает HTTP 200 и объектом
// с полем exception вместо ожидаемого массива.
type APIError struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("moodle: %s (%s)", e.Message, e.ErrorCode)
}
