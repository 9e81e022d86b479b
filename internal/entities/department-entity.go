package entities

import "hr-portal/pkg/types"

type Department struct {
	ID             uint64  `json:"id" db:"id"`
	OrganizationID uint64  `json:"organization_id" db:"organization_id"`
	Name           string  `json:"name" db:"name"`
	HeadID         *uint64 `json:"head_id" db:"head_id"`

	types.BaseEntity
}
