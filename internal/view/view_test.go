package view

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"promotion-console/internal/models"

	"github.com/PuerkitoBio/goquery"
)

func sampleTable() models.Table {
	return models.Table{
		Columns: []string{"ID", "Name", "Value"},
		Rows: []models.TableRow{
			{ID: "row_0", Cells: []string{"7", "Sale", "10.5"}},
			{ID: "row_1", Cells: []string{"8", "<b>Bold</b>", ""}},
		},
	}
}

func TestHTMLTable(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, sampleTable()); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	table := doc.Find("table.table.table-striped")
	if table.Length() != 1 {
		t.Fatalf("expected one results table")
	}
	if got := table.Find("th").Length(); got != 3 {
		t.Fatalf("expected 3 headers, got %d", got)
	}
	if got := table.Find("th").Eq(1).Text(); got != "Name" {
		t.Fatalf("unexpected header: %q", got)
	}
	if doc.Find("tr#row_0").Length() != 1 || doc.Find("tr#row_1").Length() != 1 {
		t.Fatalf("rows must carry row_<i> ids")
	}
	if got := doc.Find("tr#row_0 td").Eq(2).Text(); got != "10.5" {
		t.Fatalf("unexpected cell: %q", got)
	}
	if doc.Find("tr#row_1 b").Length() != 0 {
		t.Fatalf("cell markup must be escaped")
	}
	if got := doc.Find("tr#row_1 td").Eq(1).Text(); got != "<b>Bold</b>" {
		t.Fatalf("unexpected escaped cell text: %q", got)
	}
}

func TestHTMLEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(&buf, models.Table{Columns: []string{"ID"}}); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := doc.Find("tbody tr").Length(); got != 0 {
		t.Fatalf("expected no body rows, got %d", got)
	}
}

func TestTextTable(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, sampleTable()); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[1], "Sale") {
		t.Fatalf("unexpected text table: %q", buf.String())
	}
	if strings.Index(lines[0], "Name") != strings.Index(lines[1], "Sale") {
		t.Fatalf("columns not aligned: %q", buf.String())
	}
}

func TestFormListsEveryField(t *testing.T) {
	var buf bytes.Buffer
	if err := Form(&buf, models.Form{Name: "Sale", Ongoing: "true"}); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := buf.String()
	for _, field := range models.FormFields {
		if !strings.Contains(out, field) {
			t.Fatalf("missing field %s in %q", field, out)
		}
	}
	if !strings.Contains(out, "Sale") || !strings.Contains(out, "true") {
		t.Fatalf("missing values in %q", out)
	}
}

func TestStateFormats(t *testing.T) {
	state := models.ViewState{Form: models.Form{Name: "Sale"}, Status: "Success", Table: sampleTable()}

	var text bytes.Buffer
	if err := State(&text, state, FormatText); err != nil {
		t.Fatalf("text failed: %v", err)
	}
	if !strings.HasPrefix(text.String(), "status: Success\n") || !strings.Contains(text.String(), "10.5") {
		t.Fatalf("unexpected text output: %q", text.String())
	}

	var html bytes.Buffer
	if err := State(&html, state, FormatHTML); err != nil {
		t.Fatalf("html failed: %v", err)
	}
	if !strings.Contains(html.String(), `<tr id="row_0">`) {
		t.Fatalf("expected html table: %q", html.String())
	}

	var js bytes.Buffer
	if err := State(&js, state, FormatJSON); err != nil {
		t.Fatalf("json failed: %v", err)
	}
	var decoded models.ViewState
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("json output invalid: %v", err)
	}
	if decoded.Status != "Success" || decoded.Form.Name != "Sale" {
		t.Fatalf("unexpected decoded state: %+v", decoded)
	}

	if err := State(&bytes.Buffer{}, state, "yaml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestStateWithoutRowsSkipsTable(t *testing.T) {
	var buf bytes.Buffer
	if err := State(&buf, models.ViewState{Status: "Success"}, FormatHTML); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(buf.String(), "<table") {
		t.Fatalf("empty table must not be printed: %q", buf.String())
	}
}
