package models

import "time"

// Order заказ коммерческого API. Сумма и дата могут не распарситься —
// тогда они отсутствуют, строка при этом сохраняется.
type Order struct {
	ID          int        `json:"id"`
	Product     string     `json:"producto"`
	Total       *float64   `json:"total,omitempty"`
	Date        *time.Time `json:"fecha_pedido,omitempty"`
	Status      string     `json:"estado"`
	Modality    string     `json:"modalidad"`
	Affiliation string     `json:"tipo_de_afiliacion"`
	Year        *int       `json:"anio,omitempty"`
	Month       *int       `json:"mes_numero,omitempty"`
	MonthName   string     `json:"mes,omitempty"`
}

// Product вариация товара. Несколько строк могут делить одно имя,
// "уникальные товары" — производное представление.
type Product struct {
	ID           int      `json:"id"`
	Name         string   `json:"nombre"`
	Status       string   `json:"estado"`
	RegularPrice *float64 `json:"precio_regular,omitempty"`
	Modality     string   `json:"modalidad"`
	Affiliation  string   `json:"tipo_afiliacion"`
}

// Member запись членства. Email служит естественным ключом для подсчёта
// уникальных. Уровень "2" читается как "miembro", "4" — "no miembro",
// остальные значения проходят как есть.
type Member struct {
	Email        string     `json:"email"`
	Start        *time.Time `json:"subscription_starts,omitempty"`
	Level        string     `json:"membership_level"`
	AccountState string     `json:"account_state"`
	Year         *int       `json:"anio,omitempty"`
	Month        *int       `json:"mes_numero,omitempty"`
	MonthName    string     `json:"mes,omitempty"`
}
