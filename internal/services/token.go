package services

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"hr-portal/internal/entities"
	"hr-portal/internal/repositories"
	"hr-portal/pkg/config"
	apperrors "hr-portal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const tokenSecretBytes = 32

type TokenServiceInterface interface {
	IssueInTx(ctx context.Context, tx pgx.Tx, subjectID uint64, purpose string) (string, *entities.SecureToken, error)
	Verify(ctx context.Context, subjectID uint64, purpose string, secret string) (*entities.SecureToken, error)
	ConsumeInTx(ctx context.Context, tx pgx.Tx, tokenID uint64) error
	RevokeAllInTx(ctx context.Context, tx pgx.Tx, subjectID uint64) error
	SignupLink(email string, secret string) string
	ResetLink(email string, secret string) string
	UnlockLink(purpose string, resourceID uint64, secret string) string
}

type TokenService struct {
	tokenRepo repositories.TokenRepositoryInterface
	cfg       *config.Config
	logger    *zap.Logger
}

func NewTokenService(
	tokenRepo repositories.TokenRepositoryInterface,
	cfg *config.Config,
	logger *zap.Logger,
) TokenServiceInterface {
	return &TokenService{tokenRepo: tokenRepo, cfg: cfg, logger: logger}
}

// hashSecret — HMAC-SHA256 от секрета с серверным pepper'ом.
// В БД попадает только хэш: утечка таблицы не даёт рабочих ссылок.
func (s *TokenService) hashSecret(secret string) string {
	mac := hmac.New(sha256.New, []byte(s.cfg.Token.Pepper))
	mac.Write([]byte(secret))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *TokenService) ttlFor(purpose string) time.Duration {
	switch purpose {
	case entities.TokenPurposeInvitation:
		return s.cfg.Token.InvitationTTL
	case entities.TokenPurposePasswordReset:
		return s.cfg.Token.PasswordResetTTL
	case entities.TokenPurposeAttachmentUnlock:
		return s.cfg.Token.AttachmentTTL
	case entities.TokenPurposeInvoiceUnlock:
		return s.cfg.Token.InvoiceTTL
	default:
		return s.cfg.Token.InvitationTTL
	}
}

// IssueInTx выпускает новый одноразовый токен, отзывая все живые токены
// того же субъекта и назначения. Возвращает секрет в открытом виде —
// он существует только в момент выдачи.
func (s *TokenService) IssueInTx(ctx context.Context, tx pgx.Tx, subjectID uint64, purpose string) (string, *entities.SecureToken, error) {
	raw := make([]byte, tokenSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("не удалось сгенерировать секрет: %w", err)
	}
	secret := hex.EncodeToString(raw)

	if err := s.tokenRepo.DeleteLiveInTx(ctx, tx, subjectID, purpose); err != nil {
		return "", nil, fmt.Errorf("не удалось отозвать прежние токены: %w", err)
	}

	token, err := s.tokenRepo.CreateInTx(ctx, tx, &entities.SecureToken{
		SubjectID:  subjectID,
		Purpose:    purpose,
		SecretHash: s.hashSecret(secret),
		ExpiresAt:  time.Now().Add(s.ttlFor(purpose)),
	})
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("Выпущен одноразовый токен",
		zap.Uint64("subjectID", subjectID),
		zap.String("purpose", purpose),
		zap.Time("expiresAt", token.ExpiresAt),
	)
	return secret, token, nil
}

// Verify проверяет предъявленный секрет. Любая причина отказа — чужой
// секрет, просроченный или уже погашенный токен — даёт один и тот же
// ответ, чтобы не подсказывать перебирающему.
func (s *TokenService) Verify(ctx context.Context, subjectID uint64, purpose string, secret string) (*entities.SecureToken, error) {
	token, err := s.tokenRepo.FindLive(ctx, subjectID, purpose)
	if err != nil {
		return nil, apperrors.ErrSecureLinkInvalid
	}

	presented := []byte(s.hashSecret(secret))
	stored := []byte(token.SecretHash)
	if subtle.ConstantTimeCompare(presented, stored) != 1 {
		s.logger.Warn("Предъявлен неверный секрет токена",
			zap.Uint64("subjectID", subjectID),
			zap.String("purpose", purpose),
		)
		return nil, apperrors.ErrSecureLinkInvalid
	}
	return token, nil
}

// ConsumeInTx гасит токен в рамках транзакции вызывающего: эффект
// применяется и токен гаснет атомарно, либо не происходит ничего.
func (s *TokenService) ConsumeInTx(ctx context.Context, tx pgx.Tx, tokenID uint64) error {
	return s.tokenRepo.MarkUsedInTx(ctx, tx, tokenID)
}

// RevokeAllInTx отзывает все токены субъекта независимо от назначения.
// Вызывается при увольнении: живые ссылки уволенного гаснут вместе с учёткой.
func (s *TokenService) RevokeAllInTx(ctx context.Context, tx pgx.Tx, subjectID uint64) error {
	return s.tokenRepo.DeleteBySubjectInTx(ctx, tx, subjectID)
}

func (s *TokenService) SignupLink(email string, secret string) string {
	return fmt.Sprintf("%s/auth/signup?token=%s&email=%s",
		s.cfg.Frontend.BaseURL, url.QueryEscape(secret), url.QueryEscape(email))
}

func (s *TokenService) ResetLink(email string, secret string) string {
	return fmt.Sprintf("%s/auth/reset-password?token=%s&email=%s",
		s.cfg.Frontend.BaseURL, url.QueryEscape(secret), url.QueryEscape(email))
}

func (s *TokenService) UnlockLink(purpose string, resourceID uint64, secret string) string {
	kind := "attachments"
	if purpose == entities.TokenPurposeInvoiceUnlock {
		kind = "invoices"
	}
	return fmt.Sprintf("%s/%s/%d/unlock?token=%s",
		s.cfg.Frontend.BaseURL, kind, resourceID, url.QueryEscape(secret))
}
