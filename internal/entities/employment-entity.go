// Файл: internal/entities/employment-entity.go
package entities

import (
	"time"

	"hr-portal/pkg/types"

	"github.com/aarondl/null/v8"
)

// EmploymentDetail — кадровая карточка: один-к-одному с User.
// Отпускные балансы всегда в диапазоне [0, 365].
type EmploymentDetail struct {
	ID             uint64 `json:"id" db:"id"`
	UserID         uint64 `json:"user_id" db:"user_id"`
	OrganizationID uint64 `json:"organization_id" db:"organization_id"`

	EmployeeCode   string      `json:"employee_code" db:"employee_code"`
	Designation    null.String `json:"designation" db:"designation"`
	EmploymentType null.String `json:"employment_type" db:"employment_type"`

	DepartmentID       *uint64 `json:"department_id" db:"department_id"`
	TeamID             *uint64 `json:"team_id" db:"team_id"`
	ReportingManagerID *uint64 `json:"reporting_manager_id" db:"reporting_manager_id"`

	StartDate *time.Time `json:"start_date" db:"start_date"`

	CasualLeaveBalance float64 `json:"casual_leave_balance" db:"casual_leave_balance"`
	SickLeaveBalance   float64 `json:"sick_leave_balance" db:"sick_leave_balance"`
	EarnedLeaveBalance float64 `json:"earned_leave_balance" db:"earned_leave_balance"`

	BaseSalary null.Float64 `json:"base_salary" db:"base_salary"`
	Currency   null.String  `json:"currency" db:"currency"`

	// Экстренный контакт меняется только целиком: либо все три поля, либо ни одного.
	EmergencyContactName     null.String `json:"emergency_contact_name" db:"emergency_contact_name"`
	EmergencyContactPhone    null.String `json:"emergency_contact_phone" db:"emergency_contact_phone"`
	EmergencyContactRelation null.String `json:"emergency_contact_relation" db:"emergency_contact_relation"`

	types.BaseEntity
}
