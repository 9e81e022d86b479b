package listeners

import (
	"context"
	"fmt"
	"strings"

	"hr-portal/internal/entities"
	"hr-portal/internal/events"
	"hr-portal/internal/services"
	"hr-portal/pkg/eventbus"
	"hr-portal/pkg/websocket"

	"go.uber.org/zap"
)

// NotificationListener превращает доменные события в объявления:
// строка в таблице notifications плюс рассылка по WebSocket.
// Ошибки здесь только логируются — основная операция уже закоммичена.
type NotificationListener struct {
	notificationService services.NotificationServiceInterface
	hub                 *websocket.Hub
	logger              *zap.Logger
}

func NewNotificationListener(
	notificationService services.NotificationServiceInterface,
	hub *websocket.Hub,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		notificationService: notificationService,
		hub:                 hub,
		logger:              logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.HolidayCreatedEventName, l.handlePolicyEvent)
	bus.Subscribe(events.WorkingHoursChangedEventName, l.handlePolicyEvent)
	bus.Subscribe(events.WorkweekChangedEventName, l.handlePolicyEvent)
	bus.Subscribe(events.UserInvitedEventName, l.handleIdentityEvent)
	bus.Subscribe(events.UserTerminatedEventName, l.handleIdentityEvent)
	l.logger.Info("NotificationListener подписан на доменные события")
}

func (l *NotificationListener) announce(ctx context.Context, orgID uint64, eventID, title, body string) error {
	if _, err := l.notificationService.Persist(ctx, &entities.Notification{
		OrganizationID: orgID,
		EventID:        eventID,
		Title:          title,
		Body:           body,
		Audience:       "organization",
	}); err != nil {
		l.logger.Error("Не удалось сохранить объявление", zap.String("eventID", eventID), zap.Error(err))
	}

	payload := websocket.AnnouncementPayload{
		EventID:  eventID,
		Title:    title,
		Body:     body,
		Audience: "organization",
	}
	if err := l.hub.Broadcast(payload, "announcement"); err != nil {
		l.logger.Warn("Не удалось разослать объявление по WebSocket", zap.String("eventID", eventID), zap.Error(err))
	}
	return nil
}

func (l *NotificationListener) handlePolicyEvent(ctx context.Context, event eventbus.Event) error {
	switch e := event.(type) {
	case events.HolidayCreatedEvent:
		return l.announce(ctx, e.OrganizationID, e.EventID,
			"Новый праздничный день",
			fmt.Sprintf("Добавлен праздник «%s» (%s).", e.HolidayName, e.Date.Format("02.01.2006")))
	case events.WorkingHoursChangedEvent:
		return l.announce(ctx, e.OrganizationID, e.EventID,
			"Изменены рабочие часы",
			fmt.Sprintf("Новый рабочий день: с %s до %s.", e.WorkdayStart, e.WorkdayEnd))
	case events.WorkweekChangedEvent:
		return l.announce(ctx, e.OrganizationID, e.EventID,
			"Изменена рабочая неделя",
			fmt.Sprintf("Рабочие дни теперь: %s.", strings.Join(e.Days, ", ")))
	default:
		l.logger.Warn("Неожиданный тип события в handlePolicyEvent", zap.String("event", event.Name()))
		return nil
	}
}

func (l *NotificationListener) handleIdentityEvent(ctx context.Context, event eventbus.Event) error {
	switch e := event.(type) {
	case events.UserInvitedEvent:
		return l.announce(ctx, e.OrganizationID, e.EventID,
			"Новый сотрудник",
			fmt.Sprintf("%s приглашён(а) в организацию.", e.FullName))
	case events.UserTerminatedEvent:
		return l.announce(ctx, e.OrganizationID, e.EventID,
			"Сотрудник покинул организацию",
			fmt.Sprintf("%s больше не работает в организации.", e.FullName))
	default:
		l.logger.Warn("Неожиданный тип события в handleIdentityEvent", zap.String("event", event.Name()))
		return nil
	}
}
