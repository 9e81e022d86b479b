package services

import (
	"context"
	"strings"

	"hr-portal/internal/authz"
	"hr-portal/internal/dto"
	"hr-portal/internal/entities"
	"hr-portal/internal/events"
	"hr-portal/internal/repositories"
	apperrors "hr-portal/pkg/errors"
	"hr-portal/pkg/eventbus"
	"hr-portal/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WorkPolicyServiceInterface interface {
	GetPolicy(ctx context.Context, actorID uint64) (*dto.WorkPolicyDTO, error)
	UpdateWorkingHours(ctx context.Context, actorID uint64, payload dto.UpdateWorkingHoursDTO) (*dto.WorkPolicyDTO, error)
	UpdateWorkweek(ctx context.Context, actorID uint64, payload dto.UpdateWorkweekDTO) (*dto.WorkPolicyDTO, error)
	GetHolidays(ctx context.Context, actorID uint64) ([]dto.HolidayDTO, error)
	CreateHoliday(ctx context.Context, actorID uint64, payload dto.CreateHolidayDTO) (*dto.HolidayDTO, error)
	DeleteHoliday(ctx context.Context, actorID uint64, holidayID uint64) error
}

type WorkPolicyService struct {
	policyRepo repositories.WorkPolicyRepositoryInterface
	userRepo   repositories.UserRepositoryInterface
	bus        *eventbus.Bus
	logger     *zap.Logger
}

func NewWorkPolicyService(
	policyRepo repositories.WorkPolicyRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) WorkPolicyServiceInterface {
	return &WorkPolicyService{
		policyRepo: policyRepo,
		userRepo:   userRepo,
		bus:        bus,
		logger:     logger,
	}
}

func policyToDTO(policy *entities.WorkPolicy) *dto.WorkPolicyDTO {
	days := []string{}
	if policy.Workweek != "" {
		days = strings.Split(policy.Workweek, ",")
	}
	return &dto.WorkPolicyDTO{
		WorkdayStart: policy.WorkdayStart,
		WorkdayEnd:   policy.WorkdayEnd,
		Workweek:     days,
	}
}

func (s *WorkPolicyService) requireManager(ctx context.Context, actorID uint64) (*entities.User, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageOrganization(authz.Role(actor.Role)) {
		return nil, apperrors.ErrForbidden
	}
	return actor, nil
}

func (s *WorkPolicyService) GetPolicy(ctx context.Context, actorID uint64) (*dto.WorkPolicyDTO, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	policy, err := s.policyRepo.FindByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	return policyToDTO(policy), nil
}

// UpdateWorkingHours меняет рабочие часы и рассылает объявление.
// Событие публикуется после успешной записи: провал доставки не
// откатывает изменение регламента.
func (s *WorkPolicyService) UpdateWorkingHours(ctx context.Context, actorID uint64, payload dto.UpdateWorkingHoursDTO) (*dto.WorkPolicyDTO, error) {
	actor, err := s.requireManager(ctx, actorID)
	if err != nil {
		return nil, err
	}
	policy, err := s.policyRepo.UpdateWorkingHours(ctx, actor.OrganizationID, payload.WorkdayStart, payload.WorkdayEnd)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.WorkingHoursChangedEvent{
		EventID:        uuid.New().String(),
		OrganizationID: actor.OrganizationID,
		WorkdayStart:   policy.WorkdayStart,
		WorkdayEnd:     policy.WorkdayEnd,
	})
	return policyToDTO(policy), nil
}

func (s *WorkPolicyService) UpdateWorkweek(ctx context.Context, actorID uint64, payload dto.UpdateWorkweekDTO) (*dto.WorkPolicyDTO, error) {
	actor, err := s.requireManager(ctx, actorID)
	if err != nil {
		return nil, err
	}
	policy, err := s.policyRepo.UpdateWorkweek(ctx, actor.OrganizationID, strings.Join(payload.Days, ","))
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.WorkweekChangedEvent{
		EventID:        uuid.New().String(),
		OrganizationID: actor.OrganizationID,
		Days:           payload.Days,
	})
	return policyToDTO(policy), nil
}

func (s *WorkPolicyService) GetHolidays(ctx context.Context, actorID uint64) ([]dto.HolidayDTO, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	holidays, err := s.policyRepo.GetHolidays(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.HolidayDTO, 0, len(holidays))
	for _, h := range holidays {
		result = append(result, dto.HolidayDTO{
			ID:   h.ID,
			Name: h.Name,
			Date: h.Date.Format("2006-01-02"),
		})
	}
	return result, nil
}

func (s *WorkPolicyService) CreateHoliday(ctx context.Context, actorID uint64, payload dto.CreateHolidayDTO) (*dto.HolidayDTO, error) {
	actor, err := s.requireManager(ctx, actorID)
	if err != nil {
		return nil, err
	}
	date, err := utils.ParseDate(payload.Date)
	if err != nil {
		return nil, err
	}
	holiday, err := s.policyRepo.CreateHoliday(ctx, entities.Holiday{
		OrganizationID: actor.OrganizationID,
		Name:           payload.Name,
		Date:           date,
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.HolidayCreatedEvent{
		EventID:        uuid.New().String(),
		OrganizationID: actor.OrganizationID,
		HolidayName:    holiday.Name,
		Date:           holiday.Date,
	})
	return &dto.HolidayDTO{
		ID:   holiday.ID,
		Name: holiday.Name,
		Date: holiday.Date.Format("2006-01-02"),
	}, nil
}

func (s *WorkPolicyService) DeleteHoliday(ctx context.Context, actorID uint64, holidayID uint64) error {
	actor, err := s.requireManager(ctx, actorID)
	if err != nil {
		return err
	}
	return s.policyRepo.DeleteHoliday(ctx, actor.OrganizationID, holidayID)
}
