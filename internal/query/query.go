// Package query собирает строку запроса поиска из набора необязательных фильтров.
package query

import (
	"net/url"
	"strings"

	"promotion-console/internal/codec"
	"promotion-console/internal/models"
)

// Канонический набор фильтров поиска (в порядке сборки).
const (
	FilterName      = "name"
	FilterProductID = "product_id"
	FilterStartDate = "start_date"
	FilterType      = "type"
	FilterOngoing   = "ongoing"
)

// Filter - именованный фильтр; участвует в запросе только если задан.
type Filter struct {
	Name    string
	Value   string
	present bool
}

// String создаёт текстовый фильтр: пустая строка означает "не задан".
func String(name, value string) Filter {
	return Filter{Name: name, Value: value, present: value != ""}
}

// Bool создаёт флаговый фильтр. false трактуется как "не задан":
// искать по значению false нельзя.
func Bool(name string, value bool) Filter {
	if !value {
		return Filter{Name: name}
	}
	return Filter{Name: name, Value: codec.OngoingTrue, present: true}
}

// Present сообщает, попадёт ли фильтр в строку запроса.
func (f Filter) Present() bool {
	return f.present && f.Name != ""
}

// Build соединяет заданные фильтры через & в переданном порядке.
// Без заданных фильтров возвращает пустую строку.
func Build(filters []Filter) string {
	var b strings.Builder
	for _, f := range filters {
		if !f.Present() {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value))
	}
	return b.String()
}

// FromForm возвращает канонический список фильтров по текущей форме.
func FromForm(f models.Form) []Filter {
	return []Filter{
		String(FilterName, f.Name),
		String(FilterProductID, f.ProductID),
		String(FilterStartDate, f.StartDate),
		String(FilterType, f.Type),
		Bool(FilterOngoing, f.Ongoing == codec.OngoingTrue),
	}
}
