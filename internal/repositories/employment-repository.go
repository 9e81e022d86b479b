package repositories

import (
	"context"
	"errors"
	"fmt"

	"hr-portal/internal/entities"
	apperrors "hr-portal/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const employmentTable = "employment_details"
const employmentSelectFields = "id, user_id, organization_id, employee_code, designation, employment_type, department_id, team_id, reporting_manager_id, start_date, casual_leave_balance, sick_leave_balance, earned_leave_balance, base_salary, currency, emergency_contact_name, emergency_contact_phone, emergency_contact_relation, created_at, updated_at"

type EmploymentRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, entity *entities.EmploymentDetail) (*entities.EmploymentDetail, error)
	FindByUserID(ctx context.Context, userID uint64) (*entities.EmploymentDetail, error)
	Update(ctx context.Context, entity *entities.EmploymentDetail) (*entities.EmploymentDetail, error)
	UpdateInTx(ctx context.Context, tx pgx.Tx, entity *entities.EmploymentDetail) (*entities.EmploymentDetail, error)
	UpdateLeaveBalances(ctx context.Context, userID uint64, casual, sick, earned float64) (*entities.EmploymentDetail, error)
	UpdateCompensation(ctx context.Context, userID uint64, baseSalary float64, currency string) (*entities.EmploymentDetail, error)
	ListByOrganization(ctx context.Context, orgID uint64) ([]entities.EmploymentDetail, error)
}

type EmploymentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEmploymentRepository(storage *pgxpool.Pool, logger *zap.Logger) EmploymentRepositoryInterface {
	return &EmploymentRepository{storage: storage, logger: logger}
}

func scanEmployment(row pgx.Row) (*entities.EmploymentDetail, error) {
	var e entities.EmploymentDetail
	err := row.Scan(
		&e.ID, &e.UserID, &e.OrganizationID, &e.EmployeeCode, &e.Designation, &e.EmploymentType,
		&e.DepartmentID, &e.TeamID, &e.ReportingManagerID, &e.StartDate,
		&e.CasualLeaveBalance, &e.SickLeaveBalance, &e.EarnedLeaveBalance,
		&e.BaseSalary, &e.Currency,
		&e.EmergencyContactName, &e.EmergencyContactPhone, &e.EmergencyContactRelation,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования employment_detail: %w", err)
	}
	return &e, nil
}

func mapEmploymentWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return apperrors.Conflict("Табельный номер уже занят.", err)
		}
		if pgErr.Code == "23503" {
			return apperrors.BadRequest("Указан несуществующий отдел, команда или руководитель.", err)
		}
	}
	return err
}

func (r *EmploymentRepository) CreateInTx(ctx context.Context, tx pgx.Tx, entity *entities.EmploymentDetail) (*entities.EmploymentDetail, error) {
	query := fmt.Sprintf(`INSERT INTO %s
		(user_id, organization_id, employee_code, designation, employment_type, department_id, team_id, reporting_manager_id, start_date, casual_leave_balance, sick_leave_balance, earned_leave_balance, base_salary, currency, emergency_contact_name, emergency_contact_phone, emergency_contact_relation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING %s`, employmentTable, employmentSelectFields)

	created, err := scanEmployment(tx.QueryRow(ctx, query,
		entity.UserID, entity.OrganizationID, entity.EmployeeCode, entity.Designation, entity.EmploymentType,
		entity.DepartmentID, entity.TeamID, entity.ReportingManagerID, entity.StartDate,
		entity.CasualLeaveBalance, entity.SickLeaveBalance, entity.EarnedLeaveBalance,
		entity.BaseSalary, entity.Currency,
		entity.EmergencyContactName, entity.EmergencyContactPhone, entity.EmergencyContactRelation,
	))
	if err != nil {
		return nil, mapEmploymentWriteError(err)
	}
	return created, nil
}

func (r *EmploymentRepository) FindByUserID(ctx context.Context, userID uint64) (*entities.EmploymentDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1`, employmentSelectFields, employmentTable)
	return scanEmployment(r.storage.QueryRow(ctx, query, userID))
}

func (r *EmploymentRepository) buildFullUpdate(entity *entities.EmploymentDetail) sq.UpdateBuilder {
	return sq.Update(employmentTable).
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"user_id": entity.UserID}).
		Set("designation", entity.Designation).
		Set("employment_type", entity.EmploymentType).
		Set("department_id", entity.DepartmentID).
		Set("team_id", entity.TeamID).
		Set("reporting_manager_id", entity.ReportingManagerID).
		Set("start_date", entity.StartDate).
		Set("emergency_contact_name", entity.EmergencyContactName).
		Set("emergency_contact_phone", entity.EmergencyContactPhone).
		Set("emergency_contact_relation", entity.EmergencyContactRelation).
		Set("updated_at", sq.Expr("NOW()"))
}

func (r *EmploymentRepository) Update(ctx context.Context, entity *entities.EmploymentDetail) (*entities.EmploymentDetail, error) {
	query, args, err := r.buildFullUpdate(entity).Suffix("RETURNING " + employmentSelectFields).ToSql()
	if err != nil {
		return nil, err
	}
	updated, err := scanEmployment(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapEmploymentWriteError(err)
	}
	return updated, nil
}

func (r *EmploymentRepository) UpdateInTx(ctx context.Context, tx pgx.Tx, entity *entities.EmploymentDetail) (*entities.EmploymentDetail, error) {
	query, args, err := r.buildFullUpdate(entity).Suffix("RETURNING " + employmentSelectFields).ToSql()
	if err != nil {
		return nil, err
	}
	updated, err := scanEmployment(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapEmploymentWriteError(err)
	}
	return updated, nil
}

func (r *EmploymentRepository) UpdateLeaveBalances(ctx context.Context, userID uint64, casual, sick, earned float64) (*entities.EmploymentDetail, error) {
	query := fmt.Sprintf(`UPDATE %s SET casual_leave_balance = $1, sick_leave_balance = $2, earned_leave_balance = $3, updated_at = NOW()
		WHERE user_id = $4 RETURNING %s`, employmentTable, employmentSelectFields)
	return scanEmployment(r.storage.QueryRow(ctx, query, casual, sick, earned, userID))
}

func (r *EmploymentRepository) UpdateCompensation(ctx context.Context, userID uint64, baseSalary float64, currency string) (*entities.EmploymentDetail, error) {
	query := fmt.Sprintf(`UPDATE %s SET base_salary = $1, currency = $2, updated_at = NOW()
		WHERE user_id = $3 RETURNING %s`, employmentTable, employmentSelectFields)
	return scanEmployment(r.storage.QueryRow(ctx, query, baseSalary, currency, userID))
}

func (r *EmploymentRepository) ListByOrganization(ctx context.Context, orgID uint64) ([]entities.EmploymentDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE organization_id = $1 ORDER BY id`, employmentSelectFields, employmentTable)
	rows, err := r.storage.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]entities.EmploymentDetail, 0)
	for rows.Next() {
		d, err := scanEmployment(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, rows.Err()
}
