package interfaces

import (
	"context"
	"time"

	"birthdaybot/domain/entities"
)

// BirthdayRepository defines the interface for birthday data access
type BirthdayRepository interface {
	// GetByDate returns every (guild, member) whose birthday falls on the given
	// month and day, whatever the stored year
	GetByDate(ctx context.Context, month time.Month, day int) ([]entities.BirthdayMatch, error)

	// Upsert creates the birthday or overwrites the stored date
	Upsert(ctx context.Context, birthday *entities.Birthday) error

	// GetByMember returns the member's birthday in the guild, or nil if none is stored
	GetByMember(ctx context.Context, guildID, memberID int64) (*entities.Birthday, error)

	// GetByGuild returns every stored birthday of a guild ordered by month, day and member
	GetByGuild(ctx context.Context, guildID int64) ([]*entities.Birthday, error)
}

// GuildSettingsRepository defines the interface for guild settings data access
type GuildSettingsRepository interface {
	// GetGuildSettings returns the guild's settings, or nil if the guild never configured any
	GetGuildSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error)

	// UpsertGuildSettings creates or replaces the guild's settings
	UpsertGuildSettings(ctx context.Context, settings *entities.GuildSettings) error
}
