package entities

import (
	"hr-portal/pkg/types"

	"github.com/aarondl/null/v8"
)

// Notification — сохранённое объявление. Доставка по WebSocket — best-effort,
// строка в таблице переживает реконнекты.
type Notification struct {
	ID             uint64      `json:"id" db:"id"`
	OrganizationID uint64      `json:"organization_id" db:"organization_id"`
	EventID        string      `json:"event_id" db:"event_id"`
	Title          string      `json:"title" db:"title"`
	Body           string      `json:"body" db:"body"`
	Audience       string      `json:"audience" db:"audience"`
	Metadata       null.String `json:"metadata" db:"metadata"`

	types.BaseEntity
}
