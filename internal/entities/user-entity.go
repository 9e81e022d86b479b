// Файл: internal/entities/user-entity.go
package entities

import (
	"time"

	"hr-portal/pkg/types"

	"github.com/aarondl/null/v8"
)

// Статусы учётной записи.
const (
	UserStatusActive     = "active"
	UserStatusInactive   = "inactive"
	UserStatusProbation  = "probation"
	UserStatusTerminated = "terminated"
	UserStatusSabbatical = "sabbatical"
)

type User struct {
	ID        uint64 `json:"id" db:"id"`
	Email     string `json:"email" db:"email"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`

	Password string `json:"-" db:"password"`

	Role   string `json:"role" db:"role"`
	Status string `json:"status" db:"status"`

	OrganizationID uint64 `json:"organization_id" db:"organization_id"`

	PhotoURL null.String `json:"photo_url,omitempty" db:"photo_url"`

	InvitedAt   *time.Time `json:"invited_at,omitempty" db:"invited_at"`
	InvitedByID *uint64    `json:"invited_by_id,omitempty" db:"invited_by_id"`

	types.BaseEntity
	types.SoftDelete
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
