package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"hr-portal/internal/dto"
	"hr-portal/internal/entities"
	"hr-portal/internal/repositories"
	"hr-portal/pkg/config"
	apperrors "hr-portal/pkg/errors"
	"hr-portal/pkg/mailer"
	"hr-portal/pkg/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*entities.User, error)
	GetUserByID(ctx context.Context, userID uint64) (*entities.User, error)
	RequestPasswordReset(ctx context.Context, payload dto.RequestPasswordResetDTO) error
	ResetPassword(ctx context.Context, payload dto.ResetPasswordDTO) error
	AcceptInvitation(ctx context.Context, payload dto.AcceptInvitationDTO) (*entities.User, error)
}

type AuthService struct {
	userRepo     repositories.UserRepositoryInterface
	cacheRepo    repositories.CacheRepositoryInterface
	tokenService TokenServiceInterface
	txManager    repositories.TxManagerInterface
	mailer       mailer.ServiceInterface
	logger       *zap.Logger
	cfg          *config.Config
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	tokenService TokenServiceInterface,
	txManager repositories.TxManagerInterface,
	mailerService mailer.ServiceInterface,
	logger *zap.Logger,
	cfg *config.Config,
) AuthServiceInterface {
	return &AuthService{
		userRepo:     userRepo,
		cacheRepo:    cacheRepo,
		tokenService: tokenService,
		txManager:    txManager,
		mailer:       mailerService,
		logger:       logger,
		cfg:          cfg,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*entities.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, utils.NormalizeEmail(payload.Email))
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Status == entities.UserStatusTerminated || user.Status == entities.UserStatusInactive {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := s.checkLockout(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := utils.ComparePasswords(user.Password, payload.Password); err != nil {
		s.handleFailedLoginAttempt(ctx, user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}
	s.resetLoginAttempts(ctx, user.ID)
	return user, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uint64) (*entities.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		s.logger.Warn("GetUserByID: не удалось найти пользователя", zap.Uint64("userID", userID), zap.Error(err))
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

// RequestPasswordReset выпускает токен сброса и шлёт письмо.
// Для несуществующего email ответ тот же, что и для существующего.
func (s *AuthService) RequestPasswordReset(ctx context.Context, payload dto.RequestPasswordResetDTO) error {
	email := utils.NormalizeEmail(payload.Email)
	logger := s.logger.With(zap.String("email", email))

	attemptsKey := fmt.Sprintf("reset_attempts:%s", email)
	attemptsStr, _ := s.cacheRepo.Get(ctx, attemptsKey)
	if attempts, _ := strconv.Atoi(attemptsStr); attempts >= s.cfg.Auth.MaxResetAttempts {
		logger.Warn("Слишком много запросов на сброс пароля")
		return apperrors.NewHttpError(
			http.StatusTooManyRequests,
			fmt.Sprintf("Слишком много попыток. Попробуйте через %.0f минут.", s.cfg.Auth.LockoutDuration.Minutes()),
			nil,
			nil,
		)
	}
	s.cacheRepo.Incr(ctx, attemptsKey)
	s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.Auth.LockoutDuration)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// Тихо выходим, не сообщаем фронту
		logger.Warn("Запрос сброса пароля для неизвестного email")
		return nil
	}

	var link string
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		secret, _, err := s.tokenService.IssueInTx(ctx, tx, user.ID, entities.TokenPurposePasswordReset)
		if err != nil {
			return err
		}
		link = s.tokenService.ResetLink(user.Email, secret)
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Сброс пароля",
		Text:    fmt.Sprintf("Для сброса пароля перейдите по ссылке: %s\nСсылка действует %.0f часов и одноразова.", link, s.cfg.Token.PasswordResetTTL.Hours()),
	}); err != nil {
		logger.Warn("Не удалось отправить письмо для сброса пароля", zap.Error(err))
	}
	return nil
}

// ResetPassword применяет новый пароль и гасит токен в одной транзакции.
func (s *AuthService) ResetPassword(ctx context.Context, payload dto.ResetPasswordDTO) error {
	email := utils.NormalizeEmail(payload.Email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.ErrSecureLinkInvalid
	}

	token, err := s.tokenService.Verify(ctx, user.ID, entities.TokenPurposePasswordReset, payload.Token)
	if err != nil {
		return err
	}

	hashedPassword, err := utils.HashPassword(payload.NewPassword)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.tokenService.ConsumeInTx(ctx, tx, token.ID); err != nil {
			return err
		}
		return s.userRepo.UpdatePasswordInTx(ctx, tx, user.ID, hashedPassword)
	})
	if err != nil {
		return err
	}

	s.resetLoginAttempts(ctx, user.ID)
	s.logger.Info("Пароль сброшен по одноразовой ссылке", zap.Uint64("userID", user.ID))
	return nil
}

// AcceptInvitation активирует приглашённую учётку: устанавливает пароль,
// переводит статус в active и гасит пригласительный токен атомарно.
func (s *AuthService) AcceptInvitation(ctx context.Context, payload dto.AcceptInvitationDTO) (*entities.User, error) {
	email := utils.NormalizeEmail(payload.Email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.ErrSecureLinkInvalid
	}

	token, err := s.tokenService.Verify(ctx, user.ID, entities.TokenPurposeInvitation, payload.Token)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.tokenService.ConsumeInTx(ctx, tx, token.ID); err != nil {
			return err
		}
		return s.userRepo.UpdatePasswordInTx(ctx, tx, user.ID, hashedPassword)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Приглашение принято", zap.Uint64("userID", user.ID))
	return s.userRepo.FindUserByID(ctx, user.ID)
}

func (s *AuthService) checkLockout(ctx context.Context, userID uint64) error {
	lockoutKey := fmt.Sprintf("lockout:%d", userID)

	// Если ключ существует — аккаунт заблокирован
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, userID uint64) {
	attemptsKey := fmt.Sprintf("login_attempts:%d", userID)
	attempts, _ := s.cacheRepo.Incr(ctx, attemptsKey)
	s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.Auth.LockoutDuration)
	if attempts >= int64(s.cfg.Auth.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf("lockout:%d", userID)
		s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.Auth.LockoutDuration)
		s.cacheRepo.Del(ctx, attemptsKey)
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, userID uint64) {
	attemptsKey := fmt.Sprintf("login_attempts:%d", userID)
	lockoutKey := fmt.Sprintf("lockout:%d", userID)
	s.cacheRepo.Del(ctx, attemptsKey, lockoutKey)
}
