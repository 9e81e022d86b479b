package entities

import "hr-portal/pkg/types"

type Team struct {
	ID             uint64  `json:"id" db:"id"`
	OrganizationID uint64  `json:"organization_id" db:"organization_id"`
	DepartmentID   uint64  `json:"department_id" db:"department_id"`
	Name           string  `json:"name" db:"name"`
	ManagerID      *uint64 `json:"manager_id" db:"manager_id"`

	types.BaseEntity
}
