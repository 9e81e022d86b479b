package events

import "time"

const (
	HolidayCreatedEventName      = "workpolicy.holiday_created"
	WorkingHoursChangedEventName = "workpolicy.hours_changed"
	WorkweekChangedEventName     = "workpolicy.workweek_changed"
)

// HolidayCreatedEvent публикуется после коммита транзакции:
// объявление для всей организации.
type HolidayCreatedEvent struct {
	EventID        string
	OrganizationID uint64
	HolidayName    string
	Date           time.Time
}

func (e HolidayCreatedEvent) Name() string {
	return HolidayCreatedEventName
}

type WorkingHoursChangedEvent struct {
	EventID        string
	OrganizationID uint64
	WorkdayStart   string
	WorkdayEnd     string
}

func (e WorkingHoursChangedEvent) Name() string {
	return WorkingHoursChangedEventName
}

type WorkweekChangedEvent struct {
	EventID        string
	OrganizationID uint64
	Days           []string
}

func (e WorkweekChangedEvent) Name() string {
	return WorkweekChangedEventName
}
