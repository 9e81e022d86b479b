package services

import (
	"context"
	"fmt"
	"time"

	"hr-portal/internal/authz"
	"hr-portal/internal/dto"
	"hr-portal/internal/entities"
	"hr-portal/internal/repositories"
	apperrors "hr-portal/pkg/errors"
	"hr-portal/pkg/mailer"
	"hr-portal/pkg/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Рабочий регламент по умолчанию для новой организации.
const (
	defaultWorkdayStart = "09:00"
	defaultWorkdayEnd   = "18:00"
	defaultWorkweek     = "mon,tue,wed,thu,fri"
)

type OrganizationServiceInterface interface {
	Create(ctx context.Context, actorID uint64, payload dto.CreateOrganizationDTO) (*dto.CreateOrganizationResponseDTO, error)
	GetCurrent(ctx context.Context) (*entities.Organization, error)
	UpdateDetails(ctx context.Context, actorID uint64, payload dto.UpdateOrganizationDTO) (*entities.Organization, error)
	Delete(ctx context.Context, actorID uint64, payload dto.DeleteOrganizationDTO) error
	AddAdmin(ctx context.Context, actorID uint64, payload dto.ChangeAdminDTO) error
	RemoveAdmin(ctx context.Context, actorID uint64, payload dto.ChangeAdminDTO) error
}

type OrganizationService struct {
	orgRepo        repositories.OrganizationRepositoryInterface
	userRepo       repositories.UserRepositoryInterface
	employmentRepo repositories.EmploymentRepositoryInterface
	workPolicyRepo repositories.WorkPolicyRepositoryInterface
	tokenService   TokenServiceInterface
	txManager      repositories.TxManagerInterface
	mailer         mailer.ServiceInterface
	logger         *zap.Logger
}

func NewOrganizationService(
	orgRepo repositories.OrganizationRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	employmentRepo repositories.EmploymentRepositoryInterface,
	workPolicyRepo repositories.WorkPolicyRepositoryInterface,
	tokenService TokenServiceInterface,
	txManager repositories.TxManagerInterface,
	mailerService mailer.ServiceInterface,
	logger *zap.Logger,
) OrganizationServiceInterface {
	return &OrganizationService{
		orgRepo:        orgRepo,
		userRepo:       userRepo,
		employmentRepo: employmentRepo,
		workPolicyRepo: workPolicyRepo,
		tokenService:   tokenService,
		txManager:      txManager,
		mailer:         mailerService,
		logger:         logger,
	}
}

// Create заводит организацию вместе с владельцем, регламентом по умолчанию
// и пригласительной ссылкой для владельца — всё в одной транзакции.
// Advisory-блокировка сериализует конкурирующие создания: инсталляция
// допускает ровно одну организацию.
func (s *OrganizationService) Create(ctx context.Context, actorID uint64, payload dto.CreateOrganizationDTO) (*dto.CreateOrganizationResponseDTO, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanProvisionOrganization(authz.Role(actor.Role)) {
		return nil, apperrors.ErrForbidden
	}

	firstName, lastName, err := utils.SplitFullName(payload.OwnerName)
	if err != nil {
		return nil, err
	}

	var org *entities.Organization
	var owner *entities.User
	var inviteLink string
	now := time.Now()

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.orgRepo.AcquireCreationLockInTx(ctx, tx); err != nil {
			return err
		}
		count, err := s.orgRepo.CountOrganizationsInTx(ctx, tx)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflict("Организация уже создана: инсталляция допускает только одну.", nil)
		}

		org, err = s.orgRepo.CreateInTx(ctx, tx, &entities.Organization{
			Name:     payload.Name,
			Domain:   payload.Domain,
			Timezone: payload.Timezone,
			Locale:   payload.Locale,
			LogoURL:  payload.LogoURL,
		})
		if err != nil {
			return err
		}

		owner, err = s.userRepo.CreateUserInTx(ctx, tx, &entities.User{
			Email:          utils.NormalizeEmail(payload.OwnerEmail),
			FirstName:      firstName,
			LastName:       lastName,
			Role:           string(authz.RoleOrgOwner),
			Status:         entities.UserStatusInactive,
			OrganizationID: org.ID,
			InvitedAt:      &now,
			InvitedByID:    &actorID,
		})
		if err != nil {
			return err
		}

		if _, err := s.employmentRepo.CreateInTx(ctx, tx, &entities.EmploymentDetail{
			UserID:         owner.ID,
			OrganizationID: org.ID,
			EmployeeCode:   "OWNER-1",
		}); err != nil {
			return err
		}

		if _, err := s.workPolicyRepo.CreateInTx(ctx, tx, &entities.WorkPolicy{
			OrganizationID: org.ID,
			WorkdayStart:   defaultWorkdayStart,
			WorkdayEnd:     defaultWorkdayEnd,
			Workweek:       defaultWorkweek,
			Timezone:       payload.Timezone,
		}); err != nil {
			return err
		}

		secret, _, err := s.tokenService.IssueInTx(ctx, tx, owner.ID, entities.TokenPurposeInvitation)
		if err != nil {
			return err
		}
		inviteLink = s.tokenService.SignupLink(owner.Email, secret)
		return nil
	})
	if err != nil {
		return nil, err
	}

	emailSent := true
	if err := s.mailer.Send(ctx, mailer.Message{
		To:      owner.Email,
		Subject: fmt.Sprintf("Организация «%s» создана", org.Name),
		Text:    fmt.Sprintf("Здравствуйте, %s!\n\nВы назначены владельцем организации «%s». Для активации учётной записи перейдите по ссылке: %s", owner.FullName(), org.Name, inviteLink),
	}); err != nil {
		s.logger.Warn("Не удалось отправить письмо владельцу организации", zap.Error(err))
		emailSent = false
	}

	s.logger.Info("Организация создана",
		zap.Uint64("organizationID", org.ID),
		zap.Uint64("ownerID", owner.ID),
	)

	return &dto.CreateOrganizationResponseDTO{
		OrganizationID: org.ID,
		OwnerID:        owner.ID,
		InviteLink:     inviteLink,
		EmailSent:      emailSent,
	}, nil
}

func (s *OrganizationService) GetCurrent(ctx context.Context) (*entities.Organization, error) {
	return s.orgRepo.FindCurrent(ctx)
}

func (s *OrganizationService) UpdateDetails(ctx context.Context, actorID uint64, payload dto.UpdateOrganizationDTO) (*entities.Organization, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageOrganization(authz.Role(actor.Role)) {
		return nil, apperrors.ErrForbidden
	}
	org, err := s.orgRepo.FindCurrent(ctx)
	if err != nil {
		return nil, err
	}

	org.Name = payload.Name
	org.LogoURL = payload.LogoURL
	org.Domain = payload.Domain
	org.Timezone = payload.Timezone
	org.Locale = payload.Locale
	return s.orgRepo.UpdateOrganization(ctx, org)
}

// Delete необратимо удаляет организацию со всеми данными. Перед этим
// пароль инициатора проверяется повторно: JWT-сессии недостаточно.
func (s *OrganizationService) Delete(ctx context.Context, actorID uint64, payload dto.DeleteOrganizationDTO) error {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !authz.CanProvisionOrganization(authz.Role(actor.Role)) {
		return apperrors.ErrForbidden
	}
	if err := utils.ComparePasswords(actor.Password, payload.ConfirmationPassword); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	org, err := s.orgRepo.FindCurrent(ctx)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.orgRepo.CascadeDeleteInTx(ctx, tx, org.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Организация удалена со всеми данными",
		zap.Uint64("organizationID", org.ID),
		zap.Uint64("actorID", actorID),
	)
	return nil
}

// AddAdmin повышает сотрудника своей организации до ORG_ADMIN.
func (s *OrganizationService) AddAdmin(ctx context.Context, actorID uint64, payload dto.ChangeAdminDTO) error {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !authz.MayDelegate(authz.Role(actor.Role), authz.RoleOrgAdmin) {
		return apperrors.ErrForbidden
	}
	target, err := s.userRepo.FindUserByID(ctx, payload.UserID)
	if err != nil {
		return err
	}
	if authz.Role(actor.Role) != authz.RoleSuperAdmin && target.OrganizationID != actor.OrganizationID {
		return apperrors.ErrForbidden
	}
	if target.Role == string(authz.RoleSuperAdmin) || target.Role == string(authz.RoleOrgOwner) {
		return apperrors.ErrForbidden
	}
	return s.userRepo.UpdateRole(ctx, target.ID, string(authz.RoleOrgAdmin))
}

// RemoveAdmin возвращает администратора к роли EMPLOYEE.
func (s *OrganizationService) RemoveAdmin(ctx context.Context, actorID uint64, payload dto.ChangeAdminDTO) error {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !authz.MayDelegate(authz.Role(actor.Role), authz.RoleOrgAdmin) {
		return apperrors.ErrForbidden
	}
	target, err := s.userRepo.FindUserByID(ctx, payload.UserID)
	if err != nil {
		return err
	}
	if authz.Role(actor.Role) != authz.RoleSuperAdmin && target.OrganizationID != actor.OrganizationID {
		return apperrors.ErrForbidden
	}
	if target.Role != string(authz.RoleOrgAdmin) {
		return apperrors.BadRequest("Пользователь не является администратором.", nil)
	}
	return s.userRepo.UpdateRole(ctx, target.ID, string(authz.RoleEmployee))
}
