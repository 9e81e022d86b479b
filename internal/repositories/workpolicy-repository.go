package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hr-portal/internal/entities"
	apperrors "hr-portal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const workPolicyTable = "work_policies"
const workPolicySelectFields = "id, organization_id, workday_start, workday_end, workweek, timezone, created_at, updated_at"

const holidayTable = "holidays"
const holidaySelectFields = "id, organization_id, name, date, created_at, updated_at"

type WorkPolicyRepositoryInterface interface {
	FindByOrganization(ctx context.Context, orgID uint64) (*entities.WorkPolicy, error)
	CreateInTx(ctx context.Context, tx pgx.Tx, policy *entities.WorkPolicy) (*entities.WorkPolicy, error)
	UpdateWorkingHours(ctx context.Context, orgID uint64, start, end string) (*entities.WorkPolicy, error)
	UpdateWorkweek(ctx context.Context, orgID uint64, workweek string) (*entities.WorkPolicy, error)
	GetHolidays(ctx context.Context, orgID uint64) ([]entities.Holiday, error)
	CreateHoliday(ctx context.Context, holiday entities.Holiday) (*entities.Holiday, error)
	DeleteHoliday(ctx context.Context, orgID, id uint64) error
}

type WorkPolicyRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewWorkPolicyRepository(storage *pgxpool.Pool, logger *zap.Logger) WorkPolicyRepositoryInterface {
	return &WorkPolicyRepository{storage: storage, logger: logger}
}

func scanWorkPolicy(row pgx.Row) (*entities.WorkPolicy, error) {
	var p entities.WorkPolicy
	err := row.Scan(&p.ID, &p.OrganizationID, &p.WorkdayStart, &p.WorkdayEnd, &p.Workweek, &p.Timezone, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования work_policy: %w", err)
	}
	return &p, nil
}

func scanHoliday(row pgx.Row) (*entities.Holiday, error) {
	var h entities.Holiday
	err := row.Scan(&h.ID, &h.OrganizationID, &h.Name, &h.Date, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования holiday: %w", err)
	}
	return &h, nil
}

func (r *WorkPolicyRepository) FindByOrganization(ctx context.Context, orgID uint64) (*entities.WorkPolicy, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE organization_id = $1`, workPolicySelectFields, workPolicyTable)
	return scanWorkPolicy(r.storage.QueryRow(ctx, query, orgID))
}

func (r *WorkPolicyRepository) CreateInTx(ctx context.Context, tx pgx.Tx, policy *entities.WorkPolicy) (*entities.WorkPolicy, error) {
	query := fmt.Sprintf(`INSERT INTO %s (organization_id, workday_start, workday_end, workweek, timezone)
		VALUES ($1, $2, $3, $4, $5) RETURNING %s`, workPolicyTable, workPolicySelectFields)
	return scanWorkPolicy(tx.QueryRow(ctx, query,
		policy.OrganizationID, policy.WorkdayStart, policy.WorkdayEnd, policy.Workweek, policy.Timezone))
}

func (r *WorkPolicyRepository) UpdateWorkingHours(ctx context.Context, orgID uint64, start, end string) (*entities.WorkPolicy, error) {
	query := fmt.Sprintf(`UPDATE %s SET workday_start = $1, workday_end = $2, updated_at = NOW()
		WHERE organization_id = $3 RETURNING %s`, workPolicyTable, workPolicySelectFields)
	return scanWorkPolicy(r.storage.QueryRow(ctx, query, start, end, orgID))
}

func (r *WorkPolicyRepository) UpdateWorkweek(ctx context.Context, orgID uint64, workweek string) (*entities.WorkPolicy, error) {
	query := fmt.Sprintf(`UPDATE %s SET workweek = $1, updated_at = NOW()
		WHERE organization_id = $2 RETURNING %s`, workPolicyTable, workPolicySelectFields)
	return scanWorkPolicy(r.storage.QueryRow(ctx, query, workweek, orgID))
}

func (r *WorkPolicyRepository) GetHolidays(ctx context.Context, orgID uint64) ([]entities.Holiday, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE organization_id = $1 ORDER BY date`, holidaySelectFields, holidayTable)
	rows, err := r.storage.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make([]entities.Holiday, 0)
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, *h)
	}
	return holidays, rows.Err()
}

func (r *WorkPolicyRepository) CreateHoliday(ctx context.Context, holiday entities.Holiday) (*entities.Holiday, error) {
	query := fmt.Sprintf(`INSERT INTO %s (organization_id, name, date) VALUES ($1, $2, $3) RETURNING %s`,
		holidayTable, holidaySelectFields)
	created, err := scanHoliday(r.storage.QueryRow(ctx, query, holiday.OrganizationID, holiday.Name, holiday.Date.Truncate(24*time.Hour)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.Conflict("Праздник на эту дату уже добавлен.", err)
		}
		return nil, err
	}
	return created, nil
}

func (r *WorkPolicyRepository) DeleteHoliday(ctx context.Context, orgID, id uint64) error {
	result, err := r.storage.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND organization_id = $2`, holidayTable), id, orgID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
