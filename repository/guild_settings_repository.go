package repository

import (
	"context"
	"errors"
	"fmt"

	"birthdaybot/database"
	"birthdaybot/domain/entities"
	"birthdaybot/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// GuildSettingsRepository implements the GuildSettingsRepository interface
type GuildSettingsRepository struct {
	q Queryable
}

var _ interfaces.GuildSettingsRepository = (*GuildSettingsRepository)(nil)

// NewGuildSettingsRepository creates a new guild settings repository
func NewGuildSettingsRepository(db *database.DB) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: db.Pool}
}

// GetGuildSettings retrieves guild settings. A guild that never configured the
// bot has no row and yields nil.
func (r *GuildSettingsRepository) GetGuildSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	query := `
		SELECT guild_id, role_id, channel_id, birthday_message
		FROM guild_settings
		WHERE guild_id = $1
	`

	var settings entities.GuildSettings
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&settings.GuildID,
		&settings.RoleID,
		&settings.ChannelID,
		&settings.BirthdayMessage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings for guild %d: %w", guildID, err)
	}

	return &settings, nil
}

// UpsertGuildSettings creates or replaces the guild's settings
func (r *GuildSettingsRepository) UpsertGuildSettings(ctx context.Context, settings *entities.GuildSettings) error {
	query := `
		INSERT INTO guild_settings (guild_id, role_id, channel_id, birthday_message)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id)
		DO UPDATE SET role_id = EXCLUDED.role_id,
		              channel_id = EXCLUDED.channel_id,
		              birthday_message = EXCLUDED.birthday_message
	`

	_, err := r.q.Exec(ctx, query,
		settings.GuildID,
		settings.RoleID,
		settings.ChannelID,
		settings.BirthdayMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert guild settings for guild %d: %w", settings.GuildID, err)
	}

	return nil
}
