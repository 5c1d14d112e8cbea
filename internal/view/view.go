// Package view печатает состояние консоли: форму, строку статуса и таблицу результатов.
package view

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"text/tabwriter"

	"promotion-console/internal/codec"
	"promotion-console/internal/models"
)

// Форматы вывода.
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatJSON = "json"
)

var fieldCodec = codec.New()

var tableTemplate = template.Must(template.New("table").Parse(
	`<table class="table table-striped" cellpadding="10">
<thead>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr id="{{.ID}}">{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
`))

// Text печатает таблицу с выравниванием колонок.
func Text(w io.Writer, table models.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintln(tw, strings.Join(row.Cells, "\t"))
	}
	return tw.Flush()
}

// HTML печатает таблицу разметкой результатов поиска; значения экранируются.
func HTML(w io.Writer, table models.Table) error {
	return tableTemplate.Execute(w, table)
}

// Form печатает поля формы с их идентификаторами.
func Form(w io.Writer, form models.Form) error {
	values, err := fieldCodec.Values(form)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, field := range models.FormFields {
		fmt.Fprintf(tw, "%s\t%s\n", field, values.Get(field))
	}
	return tw.Flush()
}

// State печатает состояние целиком в выбранном формате.
// Таблица выводится только если в ней есть строки.
func State(w io.Writer, state models.ViewState, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	case FormatText, FormatHTML, "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	if _, err := fmt.Fprintf(w, "status: %s\n", state.Status); err != nil {
		return err
	}
	if err := Form(w, state.Form); err != nil {
		return err
	}
	if len(state.Table.Rows) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if format == FormatHTML {
		return HTML(w, state.Table)
	}
	return Text(w, state.Table)
}
