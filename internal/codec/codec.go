// Package codec переводит состояние формы в тело запроса и ответ сервера обратно в форму.
package codec

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"promotion-console/internal/models"

	"github.com/go-playground/form"
	"github.com/shopspring/decimal"
)

const (
	OngoingTrue  = "true"
	OngoingFalse = "false"
)

// FieldCodec - двунаправленное отображение Promotion <-> Form.
type FieldCodec struct {
	encoder *form.Encoder
	decoder *form.Decoder
}

// New создаёт кодек. Соответствие полей задаётся тегами `form` структуры models.Form.
func New() *FieldCodec {
	return &FieldCodec{
		encoder: form.NewEncoder(),
		decoder: form.NewDecoder(),
	}
}

// Encode строит тело запроса из формы. Нераспознанные числа становятся nil,
// отправка при этом не блокируется: валидирует сервер.
func (c *FieldCodec) Encode(f models.Form) models.PromotionPayload {
	return models.PromotionPayload{
		Name:      f.Name,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
		Type:      f.Type,
		Ongoing:   f.Ongoing == OngoingTrue,
		ProductID: ParseProductID(f.ProductID),
		Value:     ParseValue(f.Value),
	}
}

// Decode записывает в форму все известные поля ответа.
func (c *FieldCodec) Decode(p models.Promotion) models.Form {
	return models.Form{
		ID:        string(p.ID),
		Name:      p.Name,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Type:      p.Type,
		Value:     FormatValue(p.Value),
		ProductID: FormatProductID(p.ProductID),
		Ongoing:   FormatOngoing(p.Ongoing),
	}
}

// Clear возвращает форму со всеми пустыми полями.
func (c *FieldCodec) Clear() models.Form {
	return models.Form{}
}

// Values возвращает поля формы под их внешними идентификаторами.
func (c *FieldCodec) Values(f models.Form) (url.Values, error) {
	values, err := c.encoder.Encode(&f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode form: %w", err)
	}
	for _, field := range models.FormFields {
		if _, ok := values[field]; !ok {
			v, _ := f.Get(field)
			values.Set(field, v)
		}
	}
	return values, nil
}

// Apply записывает в форму переданные поля, остальные не трогает.
func (c *FieldCodec) Apply(f *models.Form, values url.Values) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !models.IsKnownField(key) {
			return fmt.Errorf("unknown form field %q", key)
		}
	}

	if err := c.decoder.Decode(f, values); err != nil {
		return fmt.Errorf("failed to apply form values: %w", err)
	}
	return nil
}

// ParseProductID разбирает целое; пустая или нечисловая строка даёт nil.
func ParseProductID(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseValue разбирает число с плавающей точкой; NaN и бесконечности не принимаются.
func ParseValue(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FormatValue печатает кратчайшее точное десятичное представление ("19.99", "10.5", "5").
func FormatValue(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return ""
	}
	return decimal.NewFromFloat(*v).String()
}

func FormatProductID(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// FormatOngoing: только строгое true даёт "true".
func FormatOngoing(b bool) string {
	if b {
		return OngoingTrue
	}
	return OngoingFalse
}
