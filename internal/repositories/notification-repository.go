package repositories

import (
	"context"
	"errors"
	"fmt"

	"hr-portal/internal/entities"
	apperrors "hr-portal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const notificationTable = "notifications"
const notificationSelectFields = "id, organization_id, event_id, title, body, audience, metadata, created_at, updated_at"

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *entities.Notification) (*entities.Notification, error)
	ListByOrganization(ctx context.Context, orgID uint64, limit uint64) ([]entities.Notification, error)
}

type NotificationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewNotificationRepository(storage *pgxpool.Pool, logger *zap.Logger) NotificationRepositoryInterface {
	return &NotificationRepository{storage: storage, logger: logger}
}

func scanNotification(row pgx.Row) (*entities.Notification, error) {
	var n entities.Notification
	err := row.Scan(&n.ID, &n.OrganizationID, &n.EventID, &n.Title, &n.Body, &n.Audience, &n.Metadata, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования notification: %w", err)
	}
	return &n, nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *entities.Notification) (*entities.Notification, error) {
	query := fmt.Sprintf(`INSERT INTO %s (organization_id, event_id, title, body, audience, metadata)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING %s`, notificationTable, notificationSelectFields)
	return scanNotification(r.storage.QueryRow(ctx, query,
		n.OrganizationID, n.EventID, n.Title, n.Body, n.Audience, n.Metadata))
}

func (r *NotificationRepository) ListByOrganization(ctx context.Context, orgID uint64, limit uint64) ([]entities.Notification, error) {
	if limit == 0 || limit > 100 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE organization_id = $1 ORDER BY id DESC LIMIT $2`,
		notificationSelectFields, notificationTable)
	rows, err := r.storage.Query(ctx, query, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]entities.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}
