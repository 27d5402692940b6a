package infrastructure

import (
	"fmt"

	"birthdaybot/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBirthdayRegistered:
		return "birthdays.registered"
	case events.EventTypeBirthdayCelebrated:
		return "birthdays.celebrated"
	case events.EventTypeBirthdayRoleRevoked:
		return "birthdays.role_revoked"
	case events.EventTypeGuildSettingsUpdated:
		return "birthdays.settings_updated"
	default:
		return fmt.Sprintf("birthdays.unknown.%s", event.Type())
	}
}

// StreamSubjects returns the subject filter of the birthday event stream
func (m *EventSubjectMapper) StreamSubjects() []string {
	return []string{"birthdays.>"}
}
