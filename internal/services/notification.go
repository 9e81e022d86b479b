package services

import (
	"context"

	"hr-portal/internal/entities"
	"hr-portal/internal/repositories"

	"go.uber.org/zap"
)

type NotificationServiceInterface interface {
	Persist(ctx context.Context, n *entities.Notification) (*entities.Notification, error)
	List(ctx context.Context, actorID uint64, limit uint64) ([]entities.Notification, error)
}

type NotificationService struct {
	notificationRepo repositories.NotificationRepositoryInterface
	userRepo         repositories.UserRepositoryInterface
	logger           *zap.Logger
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) NotificationServiceInterface {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

func (s *NotificationService) Persist(ctx context.Context, n *entities.Notification) (*entities.Notification, error) {
	return s.notificationRepo.Create(ctx, n)
}

func (s *NotificationService) List(ctx context.Context, actorID uint64, limit uint64) ([]entities.Notification, error) {
	actor, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.notificationRepo.ListByOrganization(ctx, actor.OrganizationID, limit)
}
