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

type DepartmentServiceInterface interface {
	GetDepartments(ctx context.Context, actorID uint64) ([]dto.DepartmentDTO, error)
	CreateDepartment(ctx context.Context, actorID uint64, payload dto.CreateDepartmentDTO) (*dto.DepartmentDTO, error)
	UpdateDepartment(ctx context.Context, actorID, id uint64, payload dto.UpdateDepartmentDTO) (*dto.DepartmentDTO, error)
	DeleteDepartment(ctx context.Context, actorID, id uint64) error
	GetTeams(ctx context.Context, actorID uint64) ([]dto.TeamDTO, error)
	CreateTeam(ctx context.Context, actorID uint64, payload dto.CreateTeamDTO) (*dto.TeamDTO, error)
	DeleteTeam(ctx context.Context, actorID, id uint64) error
}

type DepartmentService struct {
	departmentRepo repositories.DepartmentRepositoryInterface
	teamRepo       repositories.TeamRepositoryInterface
	userRepo       repositories.UserRepositoryInterface
	txManager      repositories.TxManagerInterface
	logger         *zap.Logger
}

func NewDepartmentService(
	departmentRepo repositories.DepartmentRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) DepartmentServiceInterface {
	return &DepartmentService{
		departmentRepo: departmentRepo,
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		txManager:      txManager,
		logger:         logger,
	}
}

func (s *DepartmentService) requireManager(ctx context.Context, actorID uint64) (*entities.User, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageOrganization(authz.Role(actor.Role)) {
		return nil, apperrors.ErrForbidden
	}
	return actor, nil
}

func departmentToDTO(d *entities.Department) *dto.DepartmentDTO {
	return &dto.DepartmentDTO{ID: d.ID, Name: d.Name, HeadID: d.HeadID}
}

func teamToDTO(t *entities.Team) *dto.TeamDTO {
	return &dto.TeamDTO{ID: t.ID, Name: t.Name, DepartmentID: t.DepartmentID, ManagerID: t.ManagerID}
}

func (s *DepartmentService) GetDepartments(ctx context.Context, actorID uint64) ([]dto.DepartmentDTO, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	departments, err := s.departmentRepo.GetDepartments(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.DepartmentDTO, 0, len(departments))
	for i := range departments {
		result = append(result, *departmentToDTO(&departments[i]))
	}
	return result, nil
}

func (s *DepartmentService) CreateDepartment(ctx context.Context, actorID uint64, payload dto.CreateDepartmentDTO) (*dto.DepartmentDTO, error) {
	actor, err := s.requireManager(ctx, actorID)
	if err != nil {
		return nil, err
	}
	created, err := s.departmentRepo.CreateDepartment(ctx, entities.Department{
		OrganizationID: actor.OrganizationID,
		Name:           payload.Name,
		HeadID:         payload.HeadID,
	})
	if err != nil {
		return nil, err
	}
	return departmentToDTO(created), nil
}

func (s *DepartmentService) UpdateDepartment(ctx context.Context, actorID, id uint64, payload dto.UpdateDepartmentDTO) (*dto.DepartmentDTO, error) {
	if _, err := s.requireManager(ctx, actorID); err != nil {
		return nil, err
	}
	var name *string
	if payload.Name != "" {
		name = &payload.Name
	}
	updated, err := s.departmentRepo.UpdateDepartment(ctx, id, name, payload.HeadID)
	if err != nil {
		return nil, err
	}
	return departmentToDTO(updated), nil
}

// DeleteDepartment убирает отдел вместе с командами; обнуление ссылок
// и удаление идут одной транзакцией.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, actorID, id uint64) error {
	if _, err := s.requireManager(ctx, actorID); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.departmentRepo.DeleteDepartmentInTx(ctx, tx, id)
	})
}

func (s *DepartmentService) GetTeams(ctx context.Context, actorID uint64) ([]dto.TeamDTO, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.GetTeams(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.TeamDTO, 0, len(teams))
	for i := range teams {
		result = append(result, *teamToDTO(&teams[i]))
	}
	return result, nil
}

func (s *DepartmentService) CreateTeam(ctx context.Context, actorID uint64, payload dto.CreateTeamDTO) (*dto.TeamDTO, error) {
	actor, err := s.requireManager(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.departmentRepo.FindDepartment(ctx, payload.DepartmentID); err != nil {
		return nil, err
	}
	created, err := s.teamRepo.CreateTeam(ctx, entities.Team{
		OrganizationID: actor.OrganizationID,
		DepartmentID:   payload.DepartmentID,
		Name:           payload.Name,
		ManagerID:      payload.ManagerID,
	})
	if err != nil {
		return nil, err
	}
	return teamToDTO(created), nil
}

func (s *DepartmentService) DeleteTeam(ctx context.Context, actorID, id uint64) error {
	if _, err := s.requireManager(ctx, actorID); err != nil {
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.teamRepo.DeleteTeamInTx(ctx, tx, id)
	})
}
