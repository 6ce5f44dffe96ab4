package models

// OrdersFilter параметры фильтра отчёта по заказам. Пустой срез означает
// "фильтр не выбран". Месяцы задаются испанскими названиями; если начальный
// месяц позже конечного, диапазон пуст (без перехода через год).
type OrdersFilter struct {
	Years        []int    `json:"years,omitempty"`
	MonthFrom    string   `json:"month_from,omitempty"`
	MonthTo      string   `json:"month_to,omitempty"`
	Products     []string `json:"products,omitempty"`
	Modalities   []string `json:"modalities,omitempty"`
	Affiliations []string `json:"affiliations,omitempty"`
	Statuses     []string `json:"statuses,omitempty"`
}

// ProductsFilter параметры фильтра отчёта по товарам. RangeFrom/RangeTo —
// названия товаров, границы разрешаются в минимальный и максимальный id
// независимо от порядка. Unique оставляет по одной вариации на имя.
type ProductsFilter struct {
	Statuses     []string `json:"statuses,omitempty"`
	Modalities   []string `json:"modalities,omitempty"`
	Affiliations []string `json:"affiliations,omitempty"`
	RangeFrom    string   `json:"range_from,omitempty"`
	RangeTo      string   `json:"range_to,omitempty"`
	Unique       bool     `json:"unique,omitempty"`
}

// MembersFilter параметры фильтра отчёта по членствам.
type MembersFilter struct {
	Years     []int    `json:"years,omitempty"`
	MonthFrom string   `json:"month_from,omitempty"`
	MonthTo   string   `json:"month_to,omitempty"`
	Levels    []string `json:"levels,omitempty"`
	States    []string `json:"states,omitempty"`
}

// CourseStatsFilter параметры сводки по курсам за год.
type CourseStatsFilter struct {
	Year      int    `json:"year" validate:"required"`
	MonthFrom string `json:"month_from" validate:"required"`
	MonthTo   string `json:"month_to" validate:"required"`
}

// EnrolRequest запрос ручного зачисления пользователей на курс.
type EnrolRequest struct {
	CourseID int   `json:"courseid" validate:"required,gt=0"`
	UserIDs  []int `json:"userids" validate:"required,min=1"`
	RoleID   int   `json:"roleid,omitempty"`
}

// CreateCourseRequest запрос создания курса.
type CreateCourseRequest struct {
	FullName   string `json:"fullname" validate:"required"`
	ShortName  string `json:"shortname" validate:"required"`
	CategoryID int    `json:"categoryid" validate:"required,gt=0"`
}

// ImportCourseRequest запрос импорта содержимого одного курса в другой.
type ImportCourseRequest struct {
	SourceCourseID int `json:"source_course_id" validate:"required,gt=0"`
	TargetCourseID int `json:"target_course_id" validate:"required,gt=0"`
}
