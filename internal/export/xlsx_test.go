package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/redcoes/dashboard-api/internal/models"
)

func TestOrdersXLSX(t *testing.T) {
	total := 25.5
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	year, month := 2024, 3

	orders := []models.Order{
		{
			ID: 15, Product: "Curso NIIF", Total: &total, Date: &date,
			Status: "completed", Modality: "virtual", Affiliation: "socio",
			Year: &year, Month: &month, MonthName: "Marzo",
		},
		{ID: 16, Product: "Curso IVA", Status: "pending"},
	}

	buf, err := OrdersXLSX(orders)
	require.NoError(t, err)
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ordersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, ordersColumns, rows[0])
	assert.Equal(t, "15", rows[1][0])
	assert.Equal(t, "Curso NIIF", rows[1][1])
	assert.Equal(t, "25.5", rows[1][2])
	assert.Equal(t, "2024-03-10", rows[1][3])
	assert.Equal(t, "Marzo", rows[1][9])

	// строка без даты и суммы: пустые ячейки
	assert.Equal(t, "16", rows[2][0])
	assert.Equal(t, "Curso IVA", rows[2][1])
}
