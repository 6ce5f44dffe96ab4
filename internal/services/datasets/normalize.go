package datasets

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/redcoes/dashboard-api/internal/clients/moodle"
	"github.com/redcoes/dashboard-api/internal/lib/months"
	"github.com/redcoes/dashboard-api/internal/models"
)

// Короткие имена аккредитационных полей профиля.
const (
	fieldAccFirstNames = "nombrescvpcpa"
	fieldAccLastNames  = "apellidoscvpcpa"
	fieldAccType       = "tipoinscripcion"
	fieldAccNumber     = "numero"
)

// dateLayouts форматы дат, встречающиеся в ответах коммерческого API.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
	"02/01/2006",
}

// normalizeCourse переводит сырой курс в модель. Строки без даты начала
// отбрасываются: производные колонки года и месяца считаются по началу.
func normalizeCourse(raw moodle.Course) (models.Course, bool) {
	if raw.StartDate == 0 {
		return models.Course{}, false
	}
	start := time.Unix(raw.StartDate, 0).UTC()

	c := models.Course{
		ID:         raw.ID,
		FullName:   raw.FullName,
		ShortName:  raw.ShortName,
		CategoryID: raw.CategoryID,
		Start:      start,
		Year:       start.Year(),
		Month:      int(start.Month()),
		MonthName:  months.Name(int(start.Month())),
	}
	if raw.EndDate != 0 {
		end := time.Unix(raw.EndDate, 0).UTC()
		c.End = &end
	}
	return c, true
}

// accreditationFrom поднимает кастомные поля по коротким именам.
// Номер аккредитации приходит с разметкой, она вычищается.
func accreditationFrom(fields []moodle.CustomField) models.Accreditation {
	var acc models.Accreditation
	for _, f := range fields {
		value := f.Value
		switch f.ShortName {
		case fieldAccFirstNames:
			acc.FirstNames = &value
		case fieldAccLastNames:
			acc.LastNames = &value
		case fieldAccType:
			acc.Type = &value
		case fieldAccNumber:
			stripped := stripHTML(value)
			acc.Number = &stripped
		}
	}
	return acc
}

// stripHTML возвращает только текстовое содержимое разметки.
func stripHTML(s string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	var parts []string
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			if text := strings.TrimSpace(tokenizer.Token().Data); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, " ")
}

func normalizeParticipant(raw moodle.User) models.Participant {
	return models.Participant{
		ID:            raw.ID,
		FullName:      raw.FullName,
		Email:         raw.Email,
		Accreditation: accreditationFrom(raw.CustomFields),
	}
}

func normalizeUser(raw moodle.User) models.User {
	return models.User{
		ID:            raw.ID,
		FullName:      raw.FullName,
		Email:         raw.Email,
		City:          raw.City,
		Country:       raw.Country,
		Accreditation: accreditationFrom(raw.CustomFields),
	}
}

// normalizeColumns приводит имена колонок сырой строки: обрезка пробелов,
// нижний регистр, пробелы в подчёркивания.
func normalizeColumns(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), " ", "_")
		out[key] = v
	}
	return out
}

// stringField возвращает строковое представление значения колонки.
func stringField(row map[string]any, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// целые id приходят как json-числа
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// intField парсит целое, 0 при отсутствии.
func intField(row map[string]any, key string) int {
	n, err := strconv.Atoi(stringField(row, key))
	if err != nil {
		return 0
	}
	return n
}

// floatField парсит денежную колонку; непарсящееся значение — отсутствие,
// не ноль.
func floatField(row map[string]any, key string) *float64 {
	switch v := row[key].(type) {
	case float64:
		return &v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// dateField парсит дату известными форматами; неудача — отсутствие.
func dateField(row map[string]any, key string) *time.Time {
	s := strings.TrimSpace(stringField(row, key))
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// monthColumns производные колонки календаря от даты.
func monthColumns(t *time.Time) (year, month *int, name string) {
	if t == nil {
		return nil, nil, ""
	}
	y := t.Year()
	m := int(t.Month())
	return &y, &m, months.Name(m)
}

func orderFromRow(row map[string]any) models.Order {
	row = normalizeColumns(row)
	o := models.Order{
		ID:          intField(row, "id"),
		Product:     stringField(row, "producto"),
		Total:       floatField(row, "total"),
		Date:        dateField(row, "fecha_pedido"),
		Status:      stringField(row, "estado"),
		Modality:    stringField(row, "modalidad"),
		Affiliation: stringField(row, "tipo_de_afiliacion"),
	}
	o.Year, o.Month, o.MonthName = monthColumns(o.Date)
	return o
}

func productFromRow(row map[string]any) models.Product {
	row = normalizeColumns(row)
	return models.Product{
		ID:           intField(row, "id"),
		Name:         stringField(row, "nombre"),
		Status:       stringField(row, "estado"),
		RegularPrice: floatField(row, "precio_regular"),
		Modality:     stringField(row, "modalidad"),
		Affiliation:  stringField(row, "tipo_afiliacion"),
	}
}

func memberFromRow(row map[string]any) models.Member {
	row = normalizeColumns(row)
	m := models.Member{
		Email:        stringField(row, "email"),
		Start:        dateField(row, "subscription_starts"),
		Level:        membershipLevel(stringField(row, "membership_level")),
		AccountState: stringField(row, "account_state"),
	}
	m.Year, m.Month, m.MonthName = monthColumns(m.Start)
	return m
}

// membershipLevel раскодирует уровень: "2" и "4" имеют имена, остальное как есть.
func membershipLevel(code string) string {
	switch code {
	case "2":
		return "miembro"
	case "4":
		return "no miembro"
	default:
		return code
	}
}
