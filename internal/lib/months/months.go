// Package months фиксирует испанские названия месяцев, по которым работают
// фильтры отчётов. Таблица — часть контракта: фильтры "с месяца / по месяц"
// сравнивают ровно эти строки.
package months

// Names названия месяцев по порядку, индекс 0 соответствует месяцу 1.
var Names = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Name возвращает название месяца для номера 1..12, пустую строку вне диапазона.
func Name(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return Names[m-1]
}

// Index возвращает номер месяца 1..12 по названию, false если название неизвестно.
func Index(name string) (int, bool) {
	for i, n := range Names {
		if n == name {
			return i + 1, true
		}
	}
	return 0, false
}
