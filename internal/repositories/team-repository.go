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

const teamTable = "teams"
const teamSelectFields = "id, organization_id, department_id, name, manager_id, created_at, updated_at"

type TeamRepositoryInterface interface {
	GetTeams(ctx context.Context, orgID uint64) ([]entities.Team, error)
	FindTeam(ctx context.Context, id uint64) (*entities.Team, error)
	CreateTeam(ctx context.Context, team entities.Team) (*entities.Team, error)
	UpdateTeam(ctx context.Context, id uint64, name *string, managerID *uint64) (*entities.Team, error)
	DeleteTeamInTx(ctx context.Context, tx pgx.Tx, id uint64) error
}

type TeamRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTeamRepository(storage *pgxpool.Pool, logger *zap.Logger) TeamRepositoryInterface {
	return &TeamRepository{storage: storage, logger: logger}
}

func scanTeam(row pgx.Row) (*entities.Team, error) {
	var t entities.Team
	err := row.Scan(&t.ID, &t.OrganizationID, &t.DepartmentID, &t.Name, &t.ManagerID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования team: %w", err)
	}
	return &t, nil
}

func (r *TeamRepository) GetTeams(ctx context.Context, orgID uint64) ([]entities.Team, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE organization_id = $1 ORDER BY name`, teamSelectFields, teamTable)
	rows, err := r.storage.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]entities.Team, 0)
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *team)
	}
	return teams, rows.Err()
}

func (r *TeamRepository) FindTeam(ctx context.Context, id uint64) (*entities.Team, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, teamSelectFields, teamTable)
	return scanTeam(r.storage.QueryRow(ctx, query, id))
}

func (r *TeamRepository) CreateTeam(ctx context.Context, team entities.Team) (*entities.Team, error) {
	query := fmt.Sprintf(`INSERT INTO %s (organization_id, department_id, name, manager_id)
		VALUES ($1, $2, $3, $4) RETURNING %s`, teamTable, teamSelectFields)
	return scanTeam(r.storage.QueryRow(ctx, query, team.OrganizationID, team.DepartmentID, team.Name, team.ManagerID))
}

func (r *TeamRepository) UpdateTeam(ctx context.Context, id uint64, name *string, managerID *uint64) (*entities.Team, error) {
	updateBuilder := sq.Update(teamTable).
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))
	hasChanges := false
	if name != nil {
		updateBuilder = updateBuilder.Set("name", *name)
		hasChanges = true
	}
	if managerID != nil {
		updateBuilder = updateBuilder.Set("manager_id", *managerID)
		hasChanges = true
	}
	if !hasChanges {
		return r.FindTeam(ctx, id)
	}
	query, args, err := updateBuilder.Suffix("RETURNING " + teamSelectFields).ToSql()
	if err != nil {
		return nil, err
	}
	return scanTeam(r.storage.QueryRow(ctx, query, args...))
}

// DeleteTeamInTx удаляет команду, обнулив ссылки из кадровых карточек.
// Обе операции должны пройти вместе, поэтому транзакция вызывающего.
func (r *TeamRepository) DeleteTeamInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	if _, err := tx.Exec(ctx, `UPDATE employment_details SET team_id = NULL WHERE team_id = $1`, id); err != nil {
		return err
	}
	result, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, teamTable), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
