package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Идентификаторы полей формы. Это единственная таблица соответствия между
// полями структуры Form и внешними именами полей.
const (
	FieldID        = "promotion_id"
	FieldName      = "promotion_name"
	FieldStartDate = "promotion_start_date"
	FieldEndDate   = "promotion_end_date"
	FieldType      = "promotion_type"
	FieldValue     = "promotion_value"
	FieldProductID = "promotion_product_id"
	FieldOngoing   = "promotion_ongoing"
)

// FormFields перечисляет поля формы в порядке отображения.
var FormFields = []string{
	FieldID,
	FieldName,
	FieldStartDate,
	FieldEndDate,
	FieldType,
	FieldValue,
	FieldProductID,
	FieldOngoing,
}

// PromotionID - непрозрачный идентификатор, назначаемый сервером.
// Сервер может прислать его числом или строкой, храним как текст.
type PromotionID string

// UnmarshalJSON принимает число, строку или null.
func (id *PromotionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid promotion id: %w", err)
		}
		*id = PromotionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid promotion id: %w", err)
	}
	*id = PromotionID(n.String())
	return nil
}

// Promotion представляет промоакцию, как её возвращает сервер.
// Числовые поля - указатели: отсутствующее значение не превращается в ноль.
type Promotion struct {
	ID        PromotionID `json:"id,omitempty"`
	Name      string      `json:"name"`
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
	Type      string      `json:"type"`
	Value     *float64    `json:"value"`
	ProductID *int64      `json:"product_id"`
	Ongoing   bool        `json:"ongoing"`
}

// PromotionPayload - тело запросов POST/PUT. id в тело не попадает.
// nil в числовых полях сериализуется как null (значение не распознано).
type PromotionPayload struct {
	Name      string   `json:"name"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Type      string   `json:"type"`
	Ongoing   bool     `json:"ongoing"`
	ProductID *int64   `json:"product_id"`
	Value     *float64 `json:"value"`
}

// Form - состояние формы редактирования: все поля текстовые.
type Form struct {
	ID        string `json:"promotion_id" form:"promotion_id"`
	Name      string `json:"promotion_name" form:"promotion_name"`
	StartDate string `json:"promotion_start_date" form:"promotion_start_date"`
	EndDate   string `json:"promotion_end_date" form:"promotion_end_date"`
	Type      string `json:"promotion_type" form:"promotion_type"`
	Value     string `json:"promotion_value" form:"promotion_value"`
	ProductID string `json:"promotion_product_id" form:"promotion_product_id"`
	Ongoing   string `json:"promotion_ongoing" form:"promotion_ongoing"`
}

// Get возвращает значение поля по идентификатору.
func (f Form) Get(field string) (string, bool) {
	switch field {
	case FieldID:
		return f.ID, true
	case FieldName:
		return f.Name, true
	case FieldStartDate:
		return f.StartDate, true
	case FieldEndDate:
		return f.EndDate, true
	case FieldType:
		return f.Type, true
	case FieldValue:
		return f.Value, true
	case FieldProductID:
		return f.ProductID, true
	case FieldOngoing:
		return f.Ongoing, true
	default:
		return "", false
	}
}

// IsKnownField сообщает, есть ли поле с таким идентификатором.
func IsKnownField(field string) bool {
	_, ok := Form{}.Get(field)
	return ok
}
