package dto

type CreateDepartmentDTO struct {
	Name   string  `json:"name" validate:"required"`
	HeadID *uint64 `json:"head_id" validate:"omitempty"`
}

type UpdateDepartmentDTO struct {
	Name   string  `json:"name" validate:"omitempty"`
	HeadID *uint64 `json:"head_id" validate:"omitempty"`
}

type DepartmentDTO struct {
	ID     uint64  `json:"id"`
	Name   string  `json:"name"`
	HeadID *uint64 `json:"head_id"`
}

type CreateTeamDTO struct {
	Name         string  `json:"name" validate:"required"`
	DepartmentID uint64  `json:"department_id" validate:"required"`
	ManagerID    *uint64 `json:"manager_id" validate:"omitempty"`
}

type TeamDTO struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	DepartmentID uint64  `json:"department_id"`
	ManagerID    *uint64 `json:"manager_id"`
}
