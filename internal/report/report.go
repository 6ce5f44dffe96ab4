// Package report реализует фильтрацию и агрегацию табличных датасетов.
//
// Фильтры сохраняют исходный порядок строк; сортировка делается отдельными
// помощниками там, где витрина требует порядок по id или дате. Строки с
// отсутствующей датой не попадают в датозависимые фильтры и свёртки.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/redcoes/dashboard-api/internal/lib/months"
	"github.com/redcoes/dashboard-api/internal/models"
)

// MonthBucket одна корзина месячной свёртки. Свёртка всегда отдаёт ровно
// 12 корзин с номерами 1..12, пустые месяцы заполняются нулём.
type MonthBucket struct {
	Month int     `json:"mes_numero"`
	Name  string  `json:"mes"`
	Value float64 `json:"valor"`
}

// ValueCount счётчик значений категориальной колонки в порядке первого
// появления.
type ValueCount struct {
	Value string `json:"valor"`
	Count int    `json:"cantidad"`
}

// DateCount количество строк на календарную дату.
type DateCount struct {
	Date  string `json:"fecha"`
	Count int    `json:"cantidad"`
}

// MonthRange закрытый диапазон месяцев. Если From > To, диапазон пуст:
// перехода через год нет.
type MonthRange struct {
	From   int
	To     int
	Active bool
}

// ResolveMonthRange переводит испанские названия месяцев в диапазон.
// Обе границы пустые — фильтр не выбран; пустая граница по умолчанию
// раскрывается в начало или конец года.
func ResolveMonthRange(fromName, toName string) (MonthRange, error) {
	if fromName == "" && toName == "" {
		return MonthRange{}, nil
	}
	from := 1
	to := 12
	if fromName != "" {
		m, ok := months.Index(fromName)
		if !ok {
			return MonthRange{}, fmt.Errorf("unknown month name: %q", fromName)
		}
		from = m
	}
	if toName != "" {
		m, ok := months.Index(toName)
		if !ok {
			return MonthRange{}, fmt.Errorf("unknown month name: %q", toName)
		}
		to = m
	}
	return MonthRange{From: from, To: to, Active: true}, nil
}

// Empty сообщает, что диапазон активен и заведомо пуст.
func (r MonthRange) Empty() bool {
	return r.Active && r.From > r.To
}

// Contains проверяет месяц; отсутствующий месяц не входит ни в один диапазон.
func (r MonthRange) Contains(month *int) bool {
	if !r.Active {
		return true
	}
	if month == nil {
		return false
	}
	return *month >= r.From && *month <= r.To
}

func inSet(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func yearIn(set []int, year *int) bool {
	if len(set) == 0 {
		return true
	}
	if year == nil {
		return false
	}
	for _, y := range set {
		if y == *year {
			return true
		}
	}
	return false
}

// FilterOrders применяет предикаты фильтра, сохраняя порядок строк.
func FilterOrders(orders []models.Order, f models.OrdersFilter) ([]models.Order, error) {
	mr, err := ResolveMonthRange(f.MonthFrom, f.MonthTo)
	if err != nil {
		return nil, err
	}
	out := make([]models.Order, 0, len(orders))
	if mr.Empty() {
		return out, nil
	}
	for _, o := range orders {
		if !yearIn(f.Years, o.Year) {
			continue
		}
		if !mr.Contains(o.Month) {
			continue
		}
		if !inSet(f.Products, o.Product) || !inSet(f.Modalities, o.Modality) ||
			!inSet(f.Affiliations, o.Affiliation) || !inSet(f.Statuses, o.Status) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// FilterMembers применяет предикаты фильтра членств.
func FilterMembers(members []models.Member, f models.MembersFilter) ([]models.Member, error) {
	mr, err := ResolveMonthRange(f.MonthFrom, f.MonthTo)
	if err != nil {
		return nil, err
	}
	out := make([]models.Member, 0, len(members))
	if mr.Empty() {
		return out, nil
	}
	for _, m := range members {
		if !yearIn(f.Years, m.Year) {
			continue
		}
		if !mr.Contains(m.Month) {
			continue
		}
		if !inSet(f.Levels, m.Level) || !inSet(f.States, m.AccountState) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// ResolveProductIDRange разрешает границы "от товара / до товара" в закрытый
// интервал идентификаторов. Начальное имя даёт минимальный id, конечное —
// максимальный, затем берутся min и max двух границ: порядок выбора
// пользователем роли не играет.
func ResolveProductIDRange(products []models.Product, fromName, toName string) (low, high int, err error) {
	fromID, ok := minIDByName(products, fromName)
	if !ok {
		return 0, 0, fmt.Errorf("unknown product name: %q", fromName)
	}
	toID, ok := maxIDByName(products, toName)
	if !ok {
		return 0, 0, fmt.Errorf("unknown product name: %q", toName)
	}
	if fromID > toID {
		return toID, fromID, nil
	}
	return fromID, toID, nil
}

func minIDByName(products []models.Product, name string) (int, bool) {
	id, found := 0, false
	for _, p := range products {
		if p.Name != name {
			continue
		}
		if !found || p.ID < id {
			id = p.ID
		}
		found = true
	}
	return id, found
}

func maxIDByName(products []models.Product, name string) (int, bool) {
	id, found := 0, false
	for _, p := range products {
		if p.Name != name {
			continue
		}
		if !found || p.ID > id {
			id = p.ID
		}
		found = true
	}
	return id, found
}

// FilterProducts применяет предикаты фильтра вариаций. Диапазон по именам
// применяется, только если заданы обе границы.
func FilterProducts(products []models.Product, f models.ProductsFilter) ([]models.Product, error) {
	low, high := 0, 0
	ranged := f.RangeFrom != "" && f.RangeTo != ""
	if ranged {
		var err error
		low, high, err = ResolveProductIDRange(products, f.RangeFrom, f.RangeTo)
		if err != nil {
			return nil, err
		}
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !inSet(f.Statuses, p.Status) || !inSet(f.Modalities, p.Modality) || !inSet(f.Affiliations, p.Affiliation) {
			continue
		}
		if ranged && (p.ID < low || p.ID > high) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// UniqueProducts оставляет по одной вариации на имя — строку с наибольшим id.
// Результат отсортирован по id по убыванию.
func UniqueProducts(products []models.Product) []models.Product {
	sorted := SortProductsByIDDesc(products)
	seen := make(map[string]struct{}, len(sorted))
	out := make([]models.Product, 0, len(sorted))
	for _, p := range sorted {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		out = append(out, p)
	}
	return out
}

// SumOrderTotals суммирует заказы; отсутствующие суммы пропускаются.
func SumOrderTotals(orders []models.Order) float64 {
	var sum float64
	for _, o := range orders {
		if o.Total != nil {
			sum += *o.Total
		}
	}
	return sum
}

// Distinct считает различные значения колонки.
func Distinct[T any](rows []T, key func(T) string) int {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		seen[key(r)] = struct{}{}
	}
	return len(seen)
}

// ValueCounts считает вхождения значений категориальной колонки.
// Пустые значения пропускаются, порядок — по первому появлению.
func ValueCounts[T any](rows []T, key func(T) string) []ValueCount {
	idx := make(map[string]int, len(rows))
	out := make([]ValueCount, 0)
	for _, r := range rows {
		v := key(r)
		if v == "" {
			continue
		}
		if i, ok := idx[v]; ok {
			out[i].Count++
			continue
		}
		idx[v] = len(out)
		out = append(out, ValueCount{Value: v, Count: 1})
	}
	return out
}

// MonthlyRollup раскладывает строки по 12 корзинам. month возвращает номер
// месяца строки (false — месяц отсутствует), value — вклад строки.
func MonthlyRollup[T any](rows []T, month func(T) (int, bool), value func(T) float64) []MonthBucket {
	buckets := make([]MonthBucket, 12)
	for i := range buckets {
		buckets[i] = MonthBucket{Month: i + 1, Name: months.Name(i + 1)}
	}
	for _, r := range rows {
		m, ok := month(r)
		if !ok || m < 1 || m > 12 {
			continue
		}
		buckets[m-1].Value += value(r)
	}
	return buckets
}

// OrdersByDate серия "заказов на дату" для линейного графика, по возрастанию
// даты; заказы без даты не участвуют.
func OrdersByDate(orders []models.Order) []DateCount {
	counts := make(map[string]int)
	for _, o := range orders {
		if o.Date == nil {
			continue
		}
		counts[o.Date.Format("2006-01-02")]++
	}
	dates := make([]string, 0, len(counts))
	for d := range counts {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	out := make([]DateCount, 0, len(dates))
	for _, d := range dates {
		out = append(out, DateCount{Date: d, Count: counts[d]})
	}
	return out
}

// CoursesRunning курсы, идущие сейчас: начало наступило, конец известен и
// ещё впереди.
func CoursesRunning(courses []models.Course, now time.Time) []models.Course {
	out := make([]models.Course, 0)
	for _, c := range courses {
		if !c.Start.After(now) && c.End != nil && c.End.After(now) {
			out = append(out, c)
		}
	}
	return out
}

// CoursesUpcoming курсы, которые ещё не начались.
func CoursesUpcoming(courses []models.Course, now time.Time) []models.Course {
	out := make([]models.Course, 0)
	for _, c := range courses {
		if c.Start.After(now) {
			out = append(out, c)
		}
	}
	return out
}

// CoursesFinished завершённые курсы по убыванию id, не больше limit строк.
func CoursesFinished(courses []models.Course, now time.Time, limit int) []models.Course {
	out := make([]models.Course, 0)
	for _, c := range courses {
		if c.End != nil && c.End.Before(now) {
			out = append(out, c)
		}
	}
	out = SortCoursesByIDDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FilterCoursesByPeriod курсы выбранного года в диапазоне месяцев.
func FilterCoursesByPeriod(courses []models.Course, year int, mr MonthRange) []models.Course {
	out := make([]models.Course, 0)
	if mr.Empty() {
		return out
	}
	for _, c := range courses {
		if c.Year != year {
			continue
		}
		m := c.Month
		if !mr.Contains(&m) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SortCoursesByIDDesc возвращает копию, отсортированную по id по убыванию.
func SortCoursesByIDDesc(courses []models.Course) []models.Course {
	out := make([]models.Course, len(courses))
	copy(out, courses)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// SortProductsByIDDesc возвращает копию, отсортированную по id по убыванию.
func SortProductsByIDDesc(products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// SortOrdersByDateDesc возвращает копию по убыванию даты; заказы без даты
// уходят в конец.
func SortOrdersByDateDesc(orders []models.Order) []models.Order {
	out := make([]models.Order, len(orders))
	copy(out, orders)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date == nil {
			return false
		}
		if out[j].Date == nil {
			return true
		}
		return out[i].Date.After(*out[j].Date)
	})
	return out
}

// SortMembersByStartDesc возвращает копию по убыванию даты подписки; записи
// без даты уходят в конец.
func SortMembersByStartDesc(members []models.Member) []models.Member {
	out := make([]models.Member, len(members))
	copy(out, members)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start == nil {
			return false
		}
		if out[j].Start == nil {
			return true
		}
		return out[i].Start.After(*out[j].Start)
	})
	return out
}
