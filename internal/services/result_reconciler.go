package services

import (
	"fmt"

	"promotion-console/internal/codec"
	"promotion-console/internal/models"
)

// TableColumns - канонический набор колонок таблицы результатов.
var TableColumns = []string{"ID", "Name", "Start Date", "End Date", "Type", "Value", "Product ID", "Ongoing"}

// ResultReconciler строит таблицу по результатам поиска и выбирает запись для формы.
type ResultReconciler struct{}

// NewResultReconciler создаёт ResultReconciler.
func NewResultReconciler() *ResultReconciler {
	return &ResultReconciler{}
}

// Render возвращает строку на каждую запись и первую запись (nil для пустого списка).
func (r *ResultReconciler) Render(records []models.Promotion) (models.Table, *models.Promotion) {
	table := models.Table{
		Columns: append([]string(nil), TableColumns...),
		Rows:    make([]models.TableRow, 0, len(records)),
	}
	for i, p := range records {
		table.Rows = append(table.Rows, models.TableRow{
			ID: fmt.Sprintf("row_%d", i),
			Cells: []string{
				string(p.ID),
				p.Name,
				p.StartDate,
				p.EndDate,
				p.Type,
				codec.FormatValue(p.Value),
				codec.FormatProductID(p.ProductID),
				codec.FormatOngoing(p.Ongoing),
			},
		})
	}

	if len(records) == 0 {
		return table, nil
	}
	selected := records[0]
	return table, &selected
}
