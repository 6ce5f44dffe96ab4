// Package export пишет выгрузку отфильтрованных заказов в xlsx.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/redcoes/dashboard-api/internal/models"
)

const ordersSheet = "Pedidos"

// ordersColumns порядок колонок листа совпадает с порядком колонок таблицы
// отчёта.
var ordersColumns = []string{
	"id", "producto", "total", "fecha_pedido", "estado",
	"modalidad", "tipo_de_afiliacion", "anio", "mes_numero", "mes",
}

// OrdersXLSX собирает книгу с одним листом заказов. Отсутствующие значения
// остаются пустыми ячейками.
func OrdersXLSX(orders []models.Order) (*bytes.Buffer, error) {
	const op = "export.OrdersXLSX"

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ordersSheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for col, name := range ordersColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := f.SetCellValue(ordersSheet, cell, name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	for i, o := range orders {
		values := []any{
			o.ID, o.Product, cellOrNil(o.Total), dateCell(o), o.Status,
			o.Modality, o.Affiliation, cellOrNil(o.Year), cellOrNil(o.Month), o.MonthName,
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			if err := f.SetCellValue(ordersSheet, cell, v); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf, nil
}

func cellOrNil[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func dateCell(o models.Order) any {
	if o.Date == nil {
		return nil
	}
	return o.Date.Format("2006-01-02")
}
