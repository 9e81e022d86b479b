// Файл: internal/entities/organization-entity.go
package entities

import (
	"hr-portal/pkg/types"

	"github.com/aarondl/null/v8"
)

// Organization — единственная организация инсталляции.
// Инвариант "не более одной строки" охраняется на уровне приложения
// (advisory-lock при создании), а не схемой БД.
type Organization struct {
	ID       uint64      `json:"id" db:"id"`
	Name     string      `json:"name" db:"name"`
	Domain   null.String `json:"domain" db:"domain"`
	Timezone null.String `json:"timezone" db:"timezone"`
	Locale   null.String `json:"locale" db:"locale"`
	LogoURL  string      `json:"logo_url" db:"logo_url"`

	types.BaseEntity
}
