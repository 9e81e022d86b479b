package repositories

import (
	"context"
	"errors"
	"fmt"

	"hr-portal/internal/entities"
	apperrors "hr-portal/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const departmentTable = "departments"
const departmentSelectFields = "id, organization_id, name, head_id, created_at, updated_at"

type DepartmentRepositoryInterface interface {
	GetDepartments(ctx context.Context, orgID uint64) ([]entities.Department, error)
	FindDepartment(ctx context.Context, id uint64) (*entities.Department, error)
	CreateDepartment(ctx context.Context, department entities.Department) (*entities.Department, error)
	UpsertByNameInTx(ctx context.Context, tx pgx.Tx, orgID uint64, name string) (*entities.Department, error)
	UpdateDepartment(ctx context.Context, id uint64, name *string, headID *uint64) (*entities.Department, error)
	DeleteDepartmentInTx(ctx context.Context, tx pgx.Tx, id uint64) error
}

type DepartmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDepartmentRepository(storage *pgxpool.Pool, logger *zap.Logger) DepartmentRepositoryInterface {
	return &DepartmentRepository{storage: storage, logger: logger}
}

func scanDepartment(row pgx.Row) (*entities.Department, error) {
	var d entities.Department
	err := row.Scan(&d.ID, &d.OrganizationID, &d.Name, &d.HeadID, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования department: %w", err)
	}
	return &d, nil
}

func (r *DepartmentRepository) GetDepartments(ctx context.Context, orgID uint64) ([]entities.Department, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE organization_id = $1 ORDER BY name`, departmentSelectFields, departmentTable)
	rows, err := r.storage.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments := make([]entities.Department, 0)
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, *dept)
	}
	return departments, rows.Err()
}

func (r *DepartmentRepository) FindDepartment(ctx context.Context, id uint64) (*entities.Department, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, departmentSelectFields, departmentTable)
	return scanDepartment(r.storage.QueryRow(ctx, query, id))
}

func (r *DepartmentRepository) CreateDepartment(ctx context.Context, department entities.Department) (*entities.Department, error) {
	query := fmt.Sprintf(`INSERT INTO %s (organization_id, name, head_id) VALUES ($1, $2, $3) RETURNING %s`,
		departmentTable, departmentSelectFields)
	return scanDepartment(r.storage.QueryRow(ctx, query, department.OrganizationID, department.Name, department.HeadID))
}

// UpsertByNameInTx находит отдел по имени или создаёт новый.
// ON CONFLICT с DO UPDATE нужен, чтобы RETURNING сработал и для
// уже существующей строки.
func (r *DepartmentRepository) UpsertByNameInTx(ctx context.Context, tx pgx.Tx, orgID uint64, name string) (*entities.Department, error) {
	query := fmt.Sprintf(`INSERT INTO %s (organization_id, name)
		VALUES ($1, $2)
		ON CONFLICT (organization_id, name) DO UPDATE SET updated_at = NOW()
		RETURNING %s`, departmentTable, departmentSelectFields)
	return scanDepartment(tx.QueryRow(ctx, query, orgID, name))
}

func (r *DepartmentRepository) UpdateDepartment(ctx context.Context, id uint64, name *string, headID *uint64) (*entities.Department, error) {
	updateBuilder := sq.Update(departmentTable).
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))
	hasChanges := false
	if name != nil {
		updateBuilder = updateBuilder.Set("name", *name)
		hasChanges = true
	}
	if headID != nil {
		updateBuilder = updateBuilder.Set("head_id", *headID)
		hasChanges = true
	}
	if !hasChanges {
		return r.FindDepartment(ctx, id)
	}
	query, args, err := updateBuilder.Suffix("RETURNING " + departmentSelectFields).ToSql()
	if err != nil {
		return nil, err
	}
	return scanDepartment(r.storage.QueryRow(ctx, query, args...))
}

// DeleteDepartmentInTx удаляет отдел вместе с его командами. Ссылки из
// кадровых карточек обнуляются: сотрудники остаются без отдела, а не
// исчезают. Несколько зависимых операций — значит транзакция вызывающего.
func (r *DepartmentRepository) DeleteDepartmentInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	if _, err := tx.Exec(ctx, `UPDATE employment_details SET department_id = NULL WHERE department_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE employment_details SET team_id = NULL WHERE team_id IN (SELECT id FROM teams WHERE department_id = $1)`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM teams WHERE department_id = $1`, id); err != nil {
		return err
	}
	result, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, departmentTable), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
