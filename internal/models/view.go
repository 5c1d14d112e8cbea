package models

// TableRow - строка таблицы результатов поиска.
type TableRow struct {
	ID    string   `json:"id"`
	Cells []string `json:"cells"`
}

// Table - модель таблицы результатов поиска.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

// Clone возвращает копию таблицы, не разделяющую срезы с исходной.
func (t Table) Clone() Table {
	out := Table{Columns: append([]string(nil), t.Columns...)}
	if t.Rows != nil {
		out.Rows = make([]TableRow, len(t.Rows))
		for i, row := range t.Rows {
			out.Rows[i] = TableRow{ID: row.ID, Cells: append([]string(nil), row.Cells...)}
		}
	}
	return out
}

// ViewState - всё, что видит пользователь: форма, строка статуса и таблица.
type ViewState struct {
	Form   Form   `json:"form"`
	Status string `json:"status"`
	Table  Table  `json:"table"`
}

// Clone возвращает независимую копию состояния.
func (s ViewState) Clone() ViewState {
	return ViewState{Form: s.Form, Status: s.Status, Table: s.Table.Clone()}
}
