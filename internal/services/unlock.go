package services

import (
	"context"

	"hr-portal/internal/authz"
	"hr-portal/internal/dto"
	"hr-portal/internal/entities"
	"hr-portal/internal/repositories"
	apperrors "hr-portal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// UnlockService выпускает и гасит одноразовые ссылки на закрытые
// ресурсы: вложения и счета. Субъект токена — ID ресурса.
type UnlockServiceInterface interface {
	IssueAttachmentLink(ctx context.Context, actorID, attachmentID uint64) (*dto.UnlockLinkDTO, error)
	IssueInvoiceLink(ctx context.Context, actorID, invoiceID uint64) (*dto.UnlockLinkDTO, error)
	Redeem(ctx context.Context, purpose string, resourceID uint64, secret string) error
}

type UnlockService struct {
	userRepo     repositories.UserRepositoryInterface
	tokenService TokenServiceInterface
	txManager    repositories.TxManagerInterface
	logger       *zap.Logger
}

func NewUnlockService(
	userRepo repositories.UserRepositoryInterface,
	tokenService TokenServiceInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) UnlockServiceInterface {
	return &UnlockService{
		userRepo:     userRepo,
		tokenService: tokenService,
		txManager:    txManager,
		logger:       logger,
	}
}

func (s *UnlockService) issue(ctx context.Context, actorID, resourceID uint64, purpose string) (*dto.UnlockLinkDTO, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageCompensation(authz.Role(actor.Role)) {
		return nil, apperrors.ErrForbidden
	}

	var link string
	var expiresAt string
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		secret, token, err := s.tokenService.IssueInTx(ctx, tx, resourceID, purpose)
		if err != nil {
			return err
		}
		link = s.tokenService.UnlockLink(purpose, resourceID, secret)
		expiresAt = token.ExpiresAt.Format("2006-01-02T15:04:05Z07:00")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.UnlockLinkDTO{Link: link, ExpiresAt: expiresAt}, nil
}

func (s *UnlockService) IssueAttachmentLink(ctx context.Context, actorID, attachmentID uint64) (*dto.UnlockLinkDTO, error) {
	return s.issue(ctx, actorID, attachmentID, entities.TokenPurposeAttachmentUnlock)
}

func (s *UnlockService) IssueInvoiceLink(ctx context.Context, actorID, invoiceID uint64) (*dto.UnlockLinkDTO, error) {
	return s.issue(ctx, actorID, invoiceID, entities.TokenPurposeInvoiceUnlock)
}

// Redeem гасит одноразовую ссылку. Любой отказ — один и тот же ответ.
func (s *UnlockService) Redeem(ctx context.Context, purpose string, resourceID uint64, secret string) error {
	token, err := s.tokenService.Verify(ctx, resourceID, purpose, secret)
	if err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.tokenService.ConsumeInTx(ctx, tx, token.ID)
	})
}
