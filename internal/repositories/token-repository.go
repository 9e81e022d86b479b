package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hr-portal/internal/entities"
	apperrors "hr-portal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const tokenTable = "secure_tokens"
const tokenSelectFields = "id, subject_id, purpose, secret_hash, expires_at, used_at, created_at, updated_at"

type TokenRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, token *entities.SecureToken) (*entities.SecureToken, error)
	DeleteLiveInTx(ctx context.Context, tx pgx.Tx, subjectID uint64, purpose string) error
	FindLive(ctx context.Context, subjectID uint64, purpose string) (*entities.SecureToken, error)
	MarkUsedInTx(ctx context.Context, tx pgx.Tx, id uint64) error
	DeleteBySubjectInTx(ctx context.Context, tx pgx.Tx, subjectID uint64) error
}

type TokenRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTokenRepository(storage *pgxpool.Pool, logger *zap.Logger) TokenRepositoryInterface {
	return &TokenRepository{storage: storage, logger: logger}
}

func scanToken(row pgx.Row) (*entities.SecureToken, error) {
	var t entities.SecureToken
	err := row.Scan(&t.ID, &t.SubjectID, &t.Purpose, &t.SecretHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования secure_token: %w", err)
	}
	return &t, nil
}

func (r *TokenRepository) CreateInTx(ctx context.Context, tx pgx.Tx, token *entities.SecureToken) (*entities.SecureToken, error) {
	query := fmt.Sprintf(`INSERT INTO %s (subject_id, purpose, secret_hash, expires_at)
		VALUES ($1, $2, $3, $4) RETURNING %s`, tokenTable, tokenSelectFields)
	return scanToken(tx.QueryRow(ctx, query, token.SubjectID, token.Purpose, token.SecretHash, token.ExpiresAt))
}

// DeleteLiveInTx отзывает все живые токены субъекта данного назначения.
// Выдача новой ссылки всегда аннулирует предыдущие.
func (r *TokenRepository) DeleteLiveInTx(ctx context.Context, tx pgx.Tx, subjectID uint64, purpose string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE subject_id = $1 AND purpose = $2 AND used_at IS NULL`, tokenTable)
	_, err := tx.Exec(ctx, query, subjectID, purpose)
	return err
}

func (r *TokenRepository) FindLive(ctx context.Context, subjectID uint64, purpose string) (*entities.SecureToken, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s
		WHERE subject_id = $1 AND purpose = $2 AND used_at IS NULL AND expires_at > $3
		ORDER BY id DESC LIMIT 1`, tokenSelectFields, tokenTable)
	return scanToken(r.storage.QueryRow(ctx, query, subjectID, purpose, time.Now()))
}

// MarkUsedInTx гасит токен. Guard по used_at IS NULL гарантирует,
// что два конкурирующих запроса не погасят один токен дважды.
func (r *TokenRepository) MarkUsedInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	query := fmt.Sprintf(`UPDATE %s SET used_at = NOW(), updated_at = NOW() WHERE id = $1 AND used_at IS NULL`, tokenTable)
	result, err := tx.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrSecureLinkInvalid
	}
	return nil
}

func (r *TokenRepository) DeleteBySubjectInTx(ctx context.Context, tx pgx.Tx, subjectID uint64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE subject_id = $1`, tokenTable)
	_, err := tx.Exec(ctx, query, subjectID)
	return err
}
