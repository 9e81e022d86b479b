package dto

import "github.com/aarondl/null/v8"

type InviteUserDTO struct {
	FullName     string      `json:"full_name" validate:"required"`
	Email        string      `json:"email" validate:"required,email"`
	Role         string      `json:"role" validate:"required"`
	EmployeeCode string      `json:"employee_code" validate:"required"`
	Designation  null.String `json:"designation" validate:"omitempty"`
	DepartmentID *uint64     `json:"department_id" validate:"omitempty"`
	TeamID       *uint64     `json:"team_id" validate:"omitempty"`
	StartDate    string      `json:"start_date" validate:"omitempty"`
}

type InviteUserResponseDTO struct {
	UserID     uint64 `json:"user_id"`
	InviteLink string `json:"invite_link"`
	EmailSent  bool   `json:"email_sent"`
}

// EmergencyContactDTO меняется только целиком: либо объект, либо null.
type EmergencyContactDTO struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Relation string `json:"relation" validate:"required"`
}

// EditDirectoryDTO — частичное редактирование кадровой карточки.
// DepartmentName апсертится: отдел создаётся, если его ещё нет.
type EditDirectoryDTO struct {
	FirstName              null.String          `json:"first_name" validate:"omitempty"`
	LastName               null.String          `json:"last_name" validate:"omitempty"`
	Designation            null.String          `json:"designation" validate:"omitempty"`
	EmploymentType         null.String          `json:"employment_type" validate:"omitempty"`
	DepartmentName         null.String          `json:"department_name" validate:"omitempty"`
	TeamID                 *uint64              `json:"team_id" validate:"omitempty"`
	ReportingManagerID     *uint64              `json:"reporting_manager_id" validate:"omitempty"`
	StartDate              null.String          `json:"start_date" validate:"omitempty"`
	EmergencyContact       *EmergencyContactDTO `json:"emergency_contact" validate:"omitempty"`
	RemoveEmergencyContact bool                 `json:"remove_emergency_contact"`
	Role                   null.String          `json:"role" validate:"omitempty"`
}

type UpdateLeaveBalancesDTO struct {
	CasualLeave *float64 `json:"casual_leave" validate:"omitempty"`
	SickLeave   *float64 `json:"sick_leave" validate:"omitempty"`
	EarnedLeave *float64 `json:"earned_leave" validate:"omitempty"`
}

type UpdateCompensationDTO struct {
	BaseSalary float64 `json:"base_salary" validate:"required,gte=0"`
	Currency   string  `json:"currency" validate:"required,len=3"`
}

type DirectoryEntryDTO struct {
	ID             uint64      `json:"id"`
	FullName       string      `json:"full_name"`
	Email          string      `json:"email"`
	Role           string      `json:"role"`
	Status         string      `json:"status"`
	EmployeeCode   string      `json:"employee_code"`
	Designation    null.String `json:"designation"`
	DepartmentID   *uint64     `json:"department_id"`
	DepartmentName null.String `json:"department_name"`
	TeamID         *uint64     `json:"team_id"`
	StartDate      string      `json:"start_date,omitempty"`
}

type ShortUserDTO struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
}
