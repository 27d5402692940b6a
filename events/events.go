package events

import "context"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBirthdayRegistered   EventType = "birthday_registered"
	EventTypeBirthdayCelebrated   EventType = "birthday_celebrated"
	EventTypeBirthdayRoleRevoked  EventType = "birthday_role_revoked"
	EventTypeGuildSettingsUpdated EventType = "guild_settings_updated"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// Publisher publishes domain events to interested consumers.
// Publishing is best effort: callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// BirthdayRegisteredEvent is emitted when a member's birthday is created or overwritten
type BirthdayRegisteredEvent struct {
	GuildID  int64  `json:"guild_id"`
	MemberID int64  `json:"member_id"`
	Date     string `json:"birthday_date"`
	Source   string `json:"source"` // "command" or "dashboard"
}

func (e BirthdayRegisteredEvent) Type() EventType {
	return EventTypeBirthdayRegistered
}

// BirthdayCelebratedEvent is emitted after a guild's announcement was sent
type BirthdayCelebratedEvent struct {
	GuildID   int64   `json:"guild_id"`
	ChannelID int64   `json:"channel_id"`
	MemberIDs []int64 `json:"member_ids"`
	Date      string  `json:"date"`
}

func (e BirthdayCelebratedEvent) Type() EventType {
	return EventTypeBirthdayCelebrated
}

// BirthdayRoleRevokedEvent is emitted when yesterday's birthday role is removed
type BirthdayRoleRevokedEvent struct {
	GuildID  int64 `json:"guild_id"`
	MemberID int64 `json:"member_id"`
	RoleID   int64 `json:"role_id"`
}

func (e BirthdayRoleRevokedEvent) Type() EventType {
	return EventTypeBirthdayRoleRevoked
}

// GuildSettingsUpdatedEvent is emitted when an administrator changes a guild's configuration
type GuildSettingsUpdatedEvent struct {
	GuildID   int64  `json:"guild_id"`
	ChannelID *int64 `json:"channel_id,omitempty"`
	RoleID    *int64 `json:"role_id,omitempty"`
}

func (e GuildSettingsUpdatedEvent) Type() EventType {
	return EventTypeGuildSettingsUpdated
}
