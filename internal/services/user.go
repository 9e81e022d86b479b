package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"hr-portal/internal/authz"
	"hr-portal/internal/dto"
	"hr-portal/internal/entities"
	"hr-portal/internal/events"
	"hr-portal/internal/repositories"
	apperrors "hr-portal/pkg/errors"
	"hr-portal/pkg/eventbus"
	"hr-portal/pkg/mailer"
	"hr-portal/pkg/types"
	"hr-portal/pkg/utils"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type UserServiceInterface interface {
	List(ctx context.Context, actorID uint64, filter types.Filter) ([]entities.User, uint64, error)
	Invite(ctx context.Context, actorID uint64, payload dto.InviteUserDTO) (*dto.InviteUserResponseDTO, error)
	EditDirectory(ctx context.Context, actorID, targetID uint64, payload dto.EditDirectoryDTO) (*dto.DirectoryEntryDTO, error)
	UpdateLeaveBalances(ctx context.Context, actorID, targetID uint64, payload dto.UpdateLeaveBalancesDTO) (*entities.EmploymentDetail, error)
	UpdateCompensation(ctx context.Context, actorID, targetID uint64, payload dto.UpdateCompensationDTO) (*entities.EmploymentDetail, error)
	Terminate(ctx context.Context, actorID, targetID uint64) error
	Directory(ctx context.Context, actorID uint64) ([]dto.DirectoryEntryDTO, error)
	ExportDirectory(ctx context.Context, actorID uint64) ([]byte, error)
}

type UserService struct {
	userRepo       repositories.UserRepositoryInterface
	employmentRepo repositories.EmploymentRepositoryInterface
	departmentRepo repositories.DepartmentRepositoryInterface
	orgRepo        repositories.OrganizationRepositoryInterface
	tokenService   TokenServiceInterface
	txManager      repositories.TxManagerInterface
	mailer         mailer.ServiceInterface
	bus            *eventbus.Bus
	logger         *zap.Logger
}

func NewUserService(
	userRepo repositories.UserRepositoryInterface,
	employmentRepo repositories.EmploymentRepositoryInterface,
	departmentRepo repositories.DepartmentRepositoryInterface,
	orgRepo repositories.OrganizationRepositoryInterface,
	tokenService TokenServiceInterface,
	txManager repositories.TxManagerInterface,
	mailerService mailer.ServiceInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{
		userRepo:       userRepo,
		employmentRepo: employmentRepo,
		departmentRepo: departmentRepo,
		orgRepo:        orgRepo,
		tokenService:   tokenService,
		txManager:      txManager,
		mailer:         mailerService,
		bus:            bus,
		logger:         logger,
	}
}

// List — административная выборка учёток с поиском, фильтрами и пагинацией.
// Обычные акторы видят только свою организацию, SUPER_ADMIN — всё.
func (s *UserService) List(ctx context.Context, actorID uint64, filter types.Filter) ([]entities.User, uint64, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !authz.CanManageOrganization(authz.Role(actor.Role)) {
		return nil, 0, apperrors.ErrForbidden
	}

	if authz.Role(actor.Role) != authz.RoleSuperAdmin {
		if filter.Filter == nil {
			filter.Filter = make(map[string]interface{})
		}
		filter.Filter["organization_id"] = actor.OrganizationID
	}
	return s.userRepo.GetUsers(ctx, filter)
}

// Invite заводит учётку и кадровую карточку атомарно и выпускает
// пригласительную ссылку. Письмо — best-effort: его провал не откатывает
// уже созданную учётку, клиент получает ссылку в ответе.
func (s *UserService) Invite(ctx context.Context, actorID uint64, payload dto.InviteUserDTO) (*dto.InviteUserResponseDTO, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	targetRole := authz.Role(payload.Role)
	if !targetRole.IsValid() {
		return nil, apperrors.BadRequest("Неизвестная роль.", nil)
	}
	if !authz.MayDelegate(authz.Role(actor.Role), targetRole) {
		s.logger.Warn("Попытка пригласить роль вне полномочий",
			zap.Uint64("actorID", actorID),
			zap.String("actorRole", actor.Role),
			zap.String("targetRole", payload.Role),
		)
		return nil, apperrors.ErrForbidden
	}

	firstName, lastName, err := utils.SplitFullName(payload.FullName)
	if err != nil {
		return nil, err
	}

	var startDate *time.Time
	if payload.StartDate != "" {
		parsed, err := utils.ParseDate(payload.StartDate)
		if err != nil {
			return nil, err
		}
		startDate = &parsed
	}

	var created *entities.User
	var inviteLink string
	email := utils.NormalizeEmail(payload.Email)
	now := time.Now()

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.userRepo.FindByEmailInTx(ctx, tx, email); err == nil {
			return apperrors.Conflict("Пользователь с таким email уже существует.", nil)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		created, err = s.userRepo.CreateUserInTx(ctx, tx, &entities.User{
			Email:          email,
			FirstName:      firstName,
			LastName:       lastName,
			Role:           payload.Role,
			Status:         entities.UserStatusInactive,
			OrganizationID: actor.OrganizationID,
			InvitedAt:      &now,
			InvitedByID:    &actorID,
		})
		if err != nil {
			return err
		}

		if _, err := s.employmentRepo.CreateInTx(ctx, tx, &entities.EmploymentDetail{
			UserID:         created.ID,
			OrganizationID: actor.OrganizationID,
			EmployeeCode:   payload.EmployeeCode,
			Designation:    payload.Designation,
			DepartmentID:   payload.DepartmentID,
			TeamID:         payload.TeamID,
			StartDate:      startDate,
		}); err != nil {
			return err
		}

		secret, _, err := s.tokenService.IssueInTx(ctx, tx, created.ID, entities.TokenPurposeInvitation)
		if err != nil {
			return err
		}
		inviteLink = s.tokenService.SignupLink(created.Email, secret)
		return nil
	})
	if err != nil {
		return nil, err
	}

	emailSent := true
	if err := s.mailer.Send(ctx, mailer.Message{
		To:      created.Email,
		Subject: "Приглашение в HR-портал",
		Text:    fmt.Sprintf("Здравствуйте, %s!\n\nВас пригласили в HR-портал. Для активации учётной записи перейдите по ссылке: %s\n\nСсылка одноразова.", created.FullName(), inviteLink),
	}); err != nil {
		s.logger.Warn("Не удалось отправить пригласительное письмо",
			zap.Uint64("userID", created.ID),
			zap.Error(err),
		)
		emailSent = false
	}

	s.bus.Publish(ctx, events.UserInvitedEvent{
		EventID:        uuid.New().String(),
		OrganizationID: created.OrganizationID,
		UserID:         created.ID,
		FullName:       created.FullName(),
		Role:           created.Role,
	})

	return &dto.InviteUserResponseDTO{
		UserID:     created.ID,
		InviteLink: inviteLink,
		EmailSent:  emailSent,
	}, nil
}

// privilegedDirectoryFields — поля, недоступные при редактировании
// "только себя": менять собственную роль, отдел или дату выхода нельзя.
func hasPrivilegedDirectoryFields(payload dto.EditDirectoryDTO) bool {
	return payload.Role.Valid ||
		payload.DepartmentName.Valid ||
		payload.TeamID != nil ||
		payload.ReportingManagerID != nil ||
		payload.StartDate.Valid ||
		payload.Designation.Valid ||
		payload.EmploymentType.Valid
}

func (s *UserService) EditDirectory(ctx context.Context, actorID, targetID uint64, payload dto.EditDirectoryDTO) (*dto.DirectoryEntryDTO, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := s.userRepo.FindUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	decision := authz.CanEdit(authz.Role(actor.Role), authz.Role(target.Role), actorID == targetID)
	if !decision.Allowed {
		return nil, apperrors.ErrForbidden
	}
	if decision.SelfOnly && hasPrivilegedDirectoryFields(payload) {
		return nil, apperrors.ErrForbidden
	}

	if payload.Role.Valid {
		newRole := authz.Role(payload.Role.String)
		if !newRole.IsValid() {
			return nil, apperrors.BadRequest("Неизвестная роль.", nil)
		}
		if actorID == targetID {
			return nil, apperrors.ErrForbidden
		}
		if !authz.MayDelegate(authz.Role(actor.Role), newRole) {
			return nil, apperrors.ErrForbidden
		}
	}

	detail, err := s.employmentRepo.FindByUserID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if payload.StartDate.Valid {
		parsed, err := utils.ParseDate(payload.StartDate.String)
		if err != nil {
			return nil, err
		}
		detail.StartDate = &parsed
	}
	if payload.Designation.Valid {
		detail.Designation = payload.Designation
	}
	if payload.EmploymentType.Valid {
		detail.EmploymentType = payload.EmploymentType
	}
	if payload.TeamID != nil {
		detail.TeamID = payload.TeamID
	}
	if payload.ReportingManagerID != nil {
		detail.ReportingManagerID = payload.ReportingManagerID
	}
	if payload.EmergencyContact != nil {
		detail.EmergencyContactName = null.StringFrom(payload.EmergencyContact.Name)
		detail.EmergencyContactPhone = null.StringFrom(payload.EmergencyContact.Phone)
		detail.EmergencyContactRelation = null.StringFrom(payload.EmergencyContact.Relation)
	} else if payload.RemoveEmergencyContact {
		detail.EmergencyContactName = null.String{}
		detail.EmergencyContactPhone = null.String{}
		detail.EmergencyContactRelation = null.String{}
	}

	if payload.FirstName.Valid {
		target.FirstName = payload.FirstName.String
	}
	if payload.LastName.Valid {
		target.LastName = payload.LastName.String
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if payload.DepartmentName.Valid {
			dept, err := s.departmentRepo.UpsertByNameInTx(ctx, tx, target.OrganizationID, payload.DepartmentName.String)
			if err != nil {
				return err
			}
			detail.DepartmentID = &dept.ID
		}
		if _, err := s.employmentRepo.UpdateInTx(ctx, tx, detail); err != nil {
			return err
		}
		if payload.FirstName.Valid || payload.LastName.Valid {
			query := `UPDATE users SET first_name = $1, last_name = $2, updated_at = NOW() WHERE id = $3`
			if _, err := tx.Exec(ctx, query, target.FirstName, target.LastName, target.ID); err != nil {
				return err
			}
		}
		if payload.Role.Valid {
			query := `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`
			if _, err := tx.Exec(ctx, query, payload.Role.String, target.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.directoryEntry(ctx, targetID)
}

// UpdateLeaveBalances выставляет балансы отпусков. Значения вне
// диапазона [0, 365] молча обрезаются до границы. Порог выше, чем у
// компенсации: балансы правит администратор организации, не кадровик.
func (s *UserService) UpdateLeaveBalances(ctx context.Context, actorID, targetID uint64, payload dto.UpdateLeaveBalancesDTO) (*entities.EmploymentDetail, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageOrganization(authz.Role(actor.Role)) {
		return nil, apperrors.ErrForbidden
	}

	detail, err := s.employmentRepo.FindByUserID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	casual := detail.CasualLeaveBalance
	sick := detail.SickLeaveBalance
	earned := detail.EarnedLeaveBalance
	if payload.CasualLeave != nil {
		casual = utils.ClampLeaveDays(*payload.CasualLeave)
	}
	if payload.SickLeave != nil {
		sick = utils.ClampLeaveDays(*payload.SickLeave)
	}
	if payload.EarnedLeave != nil {
		earned = utils.ClampLeaveDays(*payload.EarnedLeave)
	}

	return s.employmentRepo.UpdateLeaveBalances(ctx, targetID, casual, sick, earned)
}

func (s *UserService) UpdateCompensation(ctx context.Context, actorID, targetID uint64, payload dto.UpdateCompensationDTO) (*entities.EmploymentDetail, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageCompensation(authz.Role(actor.Role)) {
		return nil, apperrors.ErrForbidden
	}
	if _, err := s.userRepo.FindUserByID(ctx, targetID); err != nil {
		return nil, err
	}
	return s.employmentRepo.UpdateCompensation(ctx, targetID, payload.BaseSalary, payload.Currency)
}

// Terminate увольняет сотрудника: персональные данные вычищаются,
// ссылки на него из чужих записей обнуляются, учётка остаётся со
// статусом terminated. Всё в одной транзакции.
func (s *UserService) Terminate(ctx context.Context, actorID, targetID uint64) error {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	target, err := s.userRepo.FindUserByID(ctx, targetID)
	if err != nil {
		return err
	}

	decision := authz.CanTerminate(authz.Role(actor.Role), authz.Role(target.Role), actorID == targetID)
	if !decision.Allowed {
		s.logger.Warn("Отказ в увольнении",
			zap.Uint64("actorID", actorID),
			zap.Uint64("targetID", targetID),
			zap.String("reason", decision.Reason),
		)
		return apperrors.ErrForbidden
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.orgRepo.CascadeDeleteIdentityInTx(ctx, tx, targetID); err != nil {
			return err
		}
		if err := s.tokenService.RevokeAllInTx(ctx, tx, targetID); err != nil {
			return err
		}
		return s.userRepo.UpdateStatusInTx(ctx, tx, targetID, entities.UserStatusTerminated)
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, events.UserTerminatedEvent{
		EventID:        uuid.New().String(),
		OrganizationID: target.OrganizationID,
		UserID:         targetID,
		FullName:       target.FullName(),
	})
	return nil
}

func (s *UserService) directoryEntry(ctx context.Context, userID uint64) (*dto.DirectoryEntryDTO, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	detail, err := s.employmentRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := dto.DirectoryEntryDTO{
		ID:           user.ID,
		FullName:     user.FullName(),
		Email:        user.Email,
		Role:         user.Role,
		Status:       user.Status,
		EmployeeCode: detail.EmployeeCode,
		Designation:  detail.Designation,
		DepartmentID: detail.DepartmentID,
		TeamID:       detail.TeamID,
	}
	if detail.StartDate != nil {
		entry.StartDate = detail.StartDate.Format("2006-01-02")
	}
	if detail.DepartmentID != nil {
		dept, err := s.departmentRepo.FindDepartment(ctx, *detail.DepartmentID)
		if err == nil {
			entry.DepartmentName = null.StringFrom(dept.Name)
		}
	}
	return &entry, nil
}

// Directory — справочник сотрудников организации.
func (s *UserService) Directory(ctx context.Context, actorID uint64) ([]dto.DirectoryEntryDTO, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.ListByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	details, err := s.employmentRepo.ListByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	departments, err := s.departmentRepo.GetDepartments(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	detailByUser := make(map[uint64]entities.EmploymentDetail, len(details))
	for _, d := range details {
		detailByUser[d.UserID] = d
	}
	deptNames := make(map[uint64]string, len(departments))
	for _, d := range departments {
		deptNames[d.ID] = d.Name
	}

	entries := make([]dto.DirectoryEntryDTO, 0, len(users))
	for _, user := range users {
		entry := dto.DirectoryEntryDTO{
			ID:       user.ID,
			FullName: user.FullName(),
			Email:    user.Email,
			Role:     user.Role,
			Status:   user.Status,
		}
		if detail, ok := detailByUser[user.ID]; ok {
			entry.EmployeeCode = detail.EmployeeCode
			entry.Designation = detail.Designation
			entry.DepartmentID = detail.DepartmentID
			entry.TeamID = detail.TeamID
			if detail.StartDate != nil {
				entry.StartDate = detail.StartDate.Format("2006-01-02")
			}
			if detail.DepartmentID != nil {
				if name, ok := deptNames[*detail.DepartmentID]; ok {
					entry.DepartmentName = null.StringFrom(name)
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ExportDirectory выгружает справочник в XLSX.
func (s *UserService) ExportDirectory(ctx context.Context, actorID uint64) ([]byte, error) {
	entries, err := s.Directory(ctx, actorID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Сотрудники"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "ФИО", "Email", "Роль", "Статус", "Табельный номер", "Должность", "Отдел", "Дата выхода"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, entry := range entries {
		values := []interface{}{
			entry.ID, entry.FullName, entry.Email, entry.Role, entry.Status,
			entry.EmployeeCode, entry.Designation.String, entry.DepartmentName.String, entry.StartDate,
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("ошибка записи XLSX: %w", err)
	}
	return buf.Bytes(), nil
}
