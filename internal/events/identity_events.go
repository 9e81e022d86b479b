package events

const (
	UserInvitedEventName    = "identity.user_invited"
	UserTerminatedEventName = "identity.user_terminated"
)

type UserInvitedEvent struct {
	EventID        string
	OrganizationID uint64
	UserID         uint64
	FullName       string
	Role           string
}

func (e UserInvitedEvent) Name() string {
	return UserInvitedEventName
}

type UserTerminatedEvent struct {
	EventID        string
	OrganizationID uint64
	UserID         uint64
	FullName       string
}

func (e UserTerminatedEvent) Name() string {
	return UserTerminatedEventName
}
