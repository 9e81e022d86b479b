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

const organizationTable = "organizations"
const organizationSelectFields = "id, name, domain, timezone, locale, logo_url, created_at, updated_at"

// Ключ advisory-блокировки для сериализации создания организации.
const organizationCreationLockKey = 815001

// organizationCascade — таблицы, зависящие от организации, в порядке удаления.
// Порядок важен: сначала листья графа зависимостей, затем родители.
var organizationCascade = []string{
	"communication_threads",
	"notifications",
	"daily_reports",
	"monthly_reports",
	"invoices",
	"projects",
	"holidays",
	"work_policies",
	"teams",
	"departments",
	"employment_details",
}

// identityCascade — таблицы с данными конкретного сотрудника,
// чистятся перед удалением самой учётной записи. Токены сюда не входят:
// их отзывает TokenService в той же транзакции.
var identityCascade = []struct {
	table  string
	column string
}{
	{"communication_threads", "author_id"},
	{"daily_reports", "user_id"},
	{"monthly_reports", "user_id"},
	{"employment_details", "user_id"},
}

type OrganizationRepositoryInterface interface {
	CountOrganizationsInTx(ctx context.Context, tx pgx.Tx) (uint64, error)
	AcquireCreationLockInTx(ctx context.Context, tx pgx.Tx) error
	CreateInTx(ctx context.Context, tx pgx.Tx, entity *entities.Organization) (*entities.Organization, error)
	FindOrganization(ctx context.Context, id uint64) (*entities.Organization, error)
	FindCurrent(ctx context.Context) (*entities.Organization, error)
	UpdateOrganization(ctx context.Context, entity *entities.Organization) (*entities.Organization, error)
	CascadeDeleteInTx(ctx context.Context, tx pgx.Tx, orgID uint64) error
	CascadeDeleteIdentityInTx(ctx context.Context, tx pgx.Tx, userID uint64) error
}

type OrganizationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOrganizationRepository(storage *pgxpool.Pool, logger *zap.Logger) OrganizationRepositoryInterface {
	return &OrganizationRepository{storage: storage, logger: logger}
}

func scanOrganization(row pgx.Row) (*entities.Organization, error) {
	var o entities.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Domain, &o.Timezone, &o.Locale, &o.LogoURL, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования organization: %w", err)
	}
	return &o, nil
}

// AcquireCreationLockInTx берёт транзакционную advisory-блокировку.
// Два конкурирующих создания организации выстраиваются в очередь,
// и второй увидит COUNT > 0. Блокировка снимается при коммите/откате.
func (r *OrganizationRepository) AcquireCreationLockInTx(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, organizationCreationLockKey)
	return err
}

func (r *OrganizationRepository) CountOrganizationsInTx(ctx context.Context, tx pgx.Tx) (uint64, error) {
	var count uint64
	err := tx.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, organizationTable)).Scan(&count)
	return count, err
}

func (r *OrganizationRepository) CreateInTx(ctx context.Context, tx pgx.Tx, entity *entities.Organization) (*entities.Organization, error) {
	query := fmt.Sprintf(`INSERT INTO %s (name, domain, timezone, locale, logo_url)
		VALUES ($1, $2, $3, $4, $5) RETURNING %s`, organizationTable, organizationSelectFields)
	created, err := scanOrganization(tx.QueryRow(ctx, query,
		entity.Name, entity.Domain, entity.Timezone, entity.Locale, entity.LogoURL))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.Conflict("Организация с таким доменом уже существует.", err)
		}
		return nil, err
	}
	return created, nil
}

func (r *OrganizationRepository) FindOrganization(ctx context.Context, id uint64) (*entities.Organization, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, organizationSelectFields, organizationTable)
	return scanOrganization(r.storage.QueryRow(ctx, query, id))
}

// FindCurrent возвращает единственную организацию инсталляции.
func (r *OrganizationRepository) FindCurrent(ctx context.Context) (*entities.Organization, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id LIMIT 1`, organizationSelectFields, organizationTable)
	return scanOrganization(r.storage.QueryRow(ctx, query))
}

func (r *OrganizationRepository) UpdateOrganization(ctx context.Context, entity *entities.Organization) (*entities.Organization, error) {
	updateBuilder := sq.Update(organizationTable).
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"id": entity.ID}).
		Set("name", entity.Name).
		Set("logo_url", entity.LogoURL).
		Set("domain", entity.Domain).
		Set("timezone", entity.Timezone).
		Set("locale", entity.Locale).
		Set("updated_at", sq.Expr("NOW()"))

	query, args, err := updateBuilder.Suffix("RETURNING " + organizationSelectFields).ToSql()
	if err != nil {
		return nil, err
	}
	return scanOrganization(r.storage.QueryRow(ctx, query, args...))
}

// CascadeDeleteInTx удаляет организацию со всеми зависимыми данными.
// Сначала табличные зависимости, потом учётные записи, потом сама
// организация. Частичное удаление невозможно: всё в одной транзакции.
func (r *OrganizationRepository) CascadeDeleteInTx(ctx context.Context, tx pgx.Tx, orgID uint64) error {
	for _, table := range organizationCascade {
		query := fmt.Sprintf(`DELETE FROM %s WHERE organization_id = $1`, table)
		tag, err := tx.Exec(ctx, query, orgID)
		if err != nil {
			return fmt.Errorf("ошибка каскадного удаления из %s: %w", table, err)
		}
		r.logger.Debug("Каскадное удаление",
			zap.String("table", table),
			zap.Int64("rows", tag.RowsAffected()),
		)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM secure_tokens WHERE subject_id IN (SELECT id FROM users WHERE organization_id = $1)`, orgID); err != nil {
		return fmt.Errorf("ошибка удаления токенов организации: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE organization_id = $1`, orgID); err != nil {
		return fmt.Errorf("ошибка удаления пользователей организации: %w", err)
	}

	result, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, organizationTable), orgID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CascadeDeleteIdentityInTx чистит данные одного сотрудника.
// Ссылки на него из чужих записей (head_id, reporting_manager_id)
// обнуляются, а не удаляются.
func (r *OrganizationRepository) CascadeDeleteIdentityInTx(ctx context.Context, tx pgx.Tx, userID uint64) error {
	nullifications := []struct {
		table  string
		column string
	}{
		{"departments", "head_id"},
		{"teams", "manager_id"},
		{"employment_details", "reporting_manager_id"},
	}
	for _, n := range nullifications {
		query := fmt.Sprintf(`UPDATE %s SET %s = NULL WHERE %s = $1`, n.table, n.column, n.column)
		if _, err := tx.Exec(ctx, query, userID); err != nil {
			return fmt.Errorf("ошибка обнуления ссылки %s.%s: %w", n.table, n.column, err)
		}
	}

	for _, c := range identityCascade {
		query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, c.table, c.column)
		if _, err := tx.Exec(ctx, query, userID); err != nil {
			return fmt.Errorf("ошибка удаления данных сотрудника из %s: %w", c.table, err)
		}
	}
	return nil
}
