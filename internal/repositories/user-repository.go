package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hr-portal/internal/entities"
	apperrors "hr-portal/pkg/errors"
	"hr-portal/pkg/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const userTable = "users"
const userSelectFields = "u.id, u.email, u.first_name, u.last_name, u.password, u.role, u.status, u.organization_id, u.photo_url, u.invited_at, u.invited_by_id, u.created_at, u.updated_at, u.deleted_at"

var userAllowedFilterFields = map[string]string{"role": "u.role", "status": "u.status", "organization_id": "u.organization_id"}
var userAllowedSortFields = map[string]string{"id": "u.id", "email": "u.email", "last_name": "u.last_name", "created_at": "u.created_at"}

type UserRepositoryInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByEmailInTx(ctx context.Context, tx pgx.Tx, email string) (*entities.User, error)
	CreateUserInTx(ctx context.Context, tx pgx.Tx, entity *entities.User) (*entities.User, error)
	UpdatePasswordInTx(ctx context.Context, tx pgx.Tx, userID uint64, newPasswordHash string) error
	UpdateRole(ctx context.Context, userID uint64, role string) error
	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, userID uint64, status string) error
	ListByOrganization(ctx context.Context, orgID uint64) ([]entities.User, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Password,
		&user.Role, &user.Status, &user.OrganizationID, &user.PhotoURL,
		&user.InvitedAt, &user.InvitedByID,
		&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования user: %w", err)
	}
	return &user, nil
}

// mapUserWriteError превращает нарушения ограничений БД в понятные клиенту
// ошибки, не раскрывая имена constraint'ов.
func mapUserWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return apperrors.Conflict("Пользователь с таким email уже существует.", err)
		}
		if pgErr.Code == "23503" {
			return apperrors.BadRequest("Нарушение ссылочной целостности данных.", err)
		}
	}
	return err
}

func (r *UserRepository) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	conditions := []string{"u.deleted_at IS NULL"}
	args := []interface{}{}
	argCounter := 1

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR u.email ILIKE $%d)", argCounter, argCounter, argCounter))
		args = append(args, "%"+filter.Search+"%")
		argCounter++
	}
	for key, value := range filter.Filter {
		if dbColumn, ok := userAllowedFilterFields[key]; ok {
			conditions = append(conditions, fmt.Sprintf("%s = $%d", dbColumn, argCounter))
			args = append(args, value)
			argCounter++
		}
	}
	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(u.id) FROM %s u %s", userTable, whereClause)
	var totalCount uint64
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета пользователей: %w", err)
	}
	if totalCount == 0 {
		return []entities.User{}, 0, nil
	}

	orderByClause := "ORDER BY u.id DESC"
	if len(filter.Sort) > 0 {
		sorts := []string{}
		for field, direction := range filter.Sort {
			if dbField, ok := userAllowedSortFields[field]; ok {
				order := "ASC"
				if strings.ToLower(direction) == "desc" {
					order = "DESC"
				}
				sorts = append(sorts, fmt.Sprintf("%s %s", dbField, order))
			}
		}
		if len(sorts) > 0 {
			orderByClause = "ORDER BY " + strings.Join(sorts, ", ")
		}
	}

	limitClause := ""
	if filter.WithPagination {
		limitClause = fmt.Sprintf("LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	mainQuery := fmt.Sprintf("SELECT %s FROM %s u %s %s %s", userSelectFields, userTable, whereClause, orderByClause, limitClause)
	r.logger.Debug("Выполнение SQL-запроса на выборку пользователей", zap.String("query", mainQuery))

	rows, err := r.storage.Query(ctx, mainQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения пользователей: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	return users, totalCount, rows.Err()
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s u WHERE u.id = $1 AND u.deleted_at IS NULL`, userSelectFields, userTable)
	return scanUser(r.storage.QueryRow(ctx, query, id))
}

func (r *UserRepository) findByEmail(ctx context.Context, q querier, email string) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s u WHERE u.email = $1 AND u.deleted_at IS NULL LIMIT 1`, userSelectFields, userTable)
	return scanUser(q.QueryRow(ctx, query, email))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findByEmail(ctx, r.storage, email)
}

func (r *UserRepository) FindByEmailInTx(ctx context.Context, tx pgx.Tx, email string) (*entities.User, error) {
	return r.findByEmail(ctx, tx, email)
}

func (r *UserRepository) CreateUserInTx(ctx context.Context, tx pgx.Tx, entity *entities.User) (*entities.User, error) {
	query := fmt.Sprintf(`
        WITH ins AS (
            INSERT INTO %s (email, first_name, last_name, password, role, status, organization_id, photo_url, invited_at, invited_by_id)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id
        ) SELECT %s FROM %s u WHERE u.id = (SELECT id FROM ins)
    `, userTable, userSelectFields, userTable)

	row := tx.QueryRow(ctx, query,
		entity.Email, entity.FirstName, entity.LastName, entity.Password,
		entity.Role, entity.Status, entity.OrganizationID, entity.PhotoURL,
		entity.InvitedAt, entity.InvitedByID,
	)

	created, err := scanUser(row)
	if err != nil {
		return nil, mapUserWriteError(err)
	}
	return created, nil
}

// UpdatePasswordInTx применяет новый пароль и активирует учётку:
// пароль ставится только по одноразовой ссылке, вместе с ним статус
// переходит в active.
func (r *UserRepository) UpdatePasswordInTx(ctx context.Context, tx pgx.Tx, userID uint64, newPasswordHash string) error {
	query := `UPDATE users SET password = $1, status = $2, updated_at = NOW() WHERE id = $3 AND deleted_at IS NULL`
	result, err := tx.Exec(ctx, query, newPasswordHash, entities.UserStatusActive, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID uint64, role string) error {
	query := `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.storage.Exec(ctx, query, role, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, userID uint64, status string) error {
	query := `UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`
	result, err := tx.Exec(ctx, query, status, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ListByOrganization(ctx context.Context, orgID uint64) ([]entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s u WHERE u.organization_id = $1 AND u.deleted_at IS NULL ORDER BY u.id`, userSelectFields, userTable)
	rows, err := r.storage.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}
