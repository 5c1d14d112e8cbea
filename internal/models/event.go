package models

import (
	"time"

	"github.com/google/uuid"
)

// Action - действие пользователя над формой.
type Action string

const (
	ActionCreate   Action = "create"
	ActionRetrieve Action = "retrieve"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionSearch   Action = "search"
	ActionClear    Action = "clear"
)

// ParseAction разбирает имя действия.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionCreate, ActionRetrieve, ActionUpdate, ActionDelete, ActionSearch, ActionClear:
		return a, true
	default:
		return "", false
	}
}

// ActionEvent описывает завершённое действие (публикуется в Kafka).
type ActionEvent struct {
	ID          uuid.UUID `json:"id"`
	Action      Action    `json:"action"`
	Success     bool      `json:"success"`
	Status      string    `json:"status"`
	PromotionID string    `json:"promotion_id,omitempty"`
	Session     string    `json:"session,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
