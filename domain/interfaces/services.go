package interfaces

import (
	"context"

	"birthdaybot/domain/entities"
)

// BirthdayService defines birthday registration and lookup
type BirthdayService interface {
	// RegisterBirthday parses a YYYY-MM-DD date and stores it for the member
	RegisterBirthday(ctx context.Context, guildID, memberID int64, rawDate string, source string) (*entities.Birthday, error)

	// GetMemberBirthday returns the member's birthday, or nil if none is stored
	GetMemberBirthday(ctx context.Context, guildID, memberID int64) (*entities.Birthday, error)

	// GetGuildBirthdays returns the guild's roster
	GetGuildBirthdays(ctx context.Context, guildID int64) ([]*entities.Birthday, error)
}

// GuildSettingsService defines the interface for guild settings operations
type GuildSettingsService interface {
	// GetSettings returns the guild's settings, or nil if none were saved
	GetSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error)

	// UpdateSettings replaces the whole configuration after validating it
	UpdateSettings(ctx context.Context, guildID int64, roleID, channelID *int64, message string) (*entities.GuildSettings, error)

	// UpdateChannel sets the celebration channel
	UpdateChannel(ctx context.Context, guildID int64, channelID int64) (*entities.GuildSettings, error)

	// UpdateRole sets the birthday role (nil disables role handling)
	UpdateRole(ctx context.Context, guildID int64, roleID *int64) (*entities.GuildSettings, error)

	// UpdateMessage sets the announcement template
	UpdateMessage(ctx context.Context, guildID int64, message string) (*entities.GuildSettings, error)
}
