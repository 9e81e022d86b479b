// Файл: internal/entities/workpolicy-entity.go
package entities

import (
	"time"

	"hr-portal/pkg/types"

	"github.com/aarondl/null/v8"
)

// WorkPolicy — рабочий регламент организации: часы и рабочая неделя.
// Workweek хранится как CSV из кодов дней ("mon,tue,wed,thu,fri").
type WorkPolicy struct {
	ID             uint64      `json:"id" db:"id"`
	OrganizationID uint64      `json:"organization_id" db:"organization_id"`
	WorkdayStart   string      `json:"workday_start" db:"workday_start"`
	WorkdayEnd     string      `json:"workday_end" db:"workday_end"`
	Workweek       string      `json:"workweek" db:"workweek"`
	Timezone       null.String `json:"timezone" db:"timezone"`

	types.BaseEntity
}

type Holiday struct {
	ID             uint64    `json:"id" db:"id"`
	OrganizationID uint64    `json:"organization_id" db:"organization_id"`
	Name           string    `json:"name" db:"name"`
	Date           time.Time `json:"date" db:"date"`

	types.BaseEntity
}
