// Package models содержит доменные структуры отчётного дашборда: снимки
// сущностей обеих внешних систем после нормализации на границе выборки,
// а также структуры фильтров, приходящие из JSON-запросов.
//
// Все записи — снимки состояния апстрима, локально они не изменяются.
// Поля-указатели означают "значение отсутствует": непарсящаяся дата или
// сумма не обнуляется, а выпадает из датобound-агрегаций.
package models

import "time"

// Course курс e-learning платформы. Строки без даты начала отбрасываются
// при нормализации, поэтому Start всегда заполнен; End может отсутствовать.
// Год, номер и название месяца считаются заранее по дате начала.
type Course struct {
	ID         int        `json:"id"`
	FullName   string     `json:"fullname"`
	ShortName  string     `json:"shortname"`
	CategoryID int        `json:"categoryid"`
	Start      time.Time  `json:"start"`
	End        *time.Time `json:"end,omitempty"`
	Year       int        `json:"anio"`
	Month      int        `json:"mes_numero"`
	MonthName  string     `json:"mes"`
}

// Accreditation свободные аккредитационные атрибуты учётной записи,
// поднятые из customfields по короткому имени. Любое поле может отсутствовать.
type Accreditation struct {
	FirstNames *string `json:"nombres_acreditacion,omitempty"`
	LastNames  *string `json:"apellidos_acreditacion,omitempty"`
	Type       *string `json:"tipo_acreditacion,omitempty"`
	Number     *string `json:"numero_acreditacion,omitempty"`
}

// Participant запись о зачисленном на курс пользователе.
type Participant struct {
	ID       int    `json:"id"`
	FullName string `json:"nombre"`
	Email    string `json:"correo"`
	Accreditation
}

// User пользователь платформы целиком, надмножество участников всех курсов.
type User struct {
	ID       int    `json:"id"`
	FullName string `json:"nombre"`
	Email    string `json:"correo"`
	City     string `json:"ciudad"`
	Country  string `json:"pais"`
	Accreditation
}
