package services

import (
	"context"
	"fmt"
	"strings"

	"birthdaybot/domain/entities"
	"birthdaybot/domain/interfaces"
	"birthdaybot/events"

	log "github.com/sirupsen/logrus"
)

// guildSettingsService implements the GuildSettingsService interface
type guildSettingsService struct {
	guildSettingsRepo interfaces.GuildSettingsRepository
	eventPublisher    events.Publisher
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(guildSettingsRepo interfaces.GuildSettingsRepository, eventPublisher events.Publisher) interfaces.GuildSettingsService {
	return &guildSettingsService{
		guildSettingsRepo: guildSettingsRepo,
		eventPublisher:    eventPublisher,
	}
}

// GetSettings retrieves guild settings, nil when the guild has none
func (s *guildSettingsService) GetSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	settings, err := s.guildSettingsRepo.GetGuildSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings replaces the full configuration, as the dashboard form does
func (s *guildSettingsService) UpdateSettings(ctx context.Context, guildID int64, roleID, channelID *int64, message string) (*entities.GuildSettings, error) {
	settings := &entities.GuildSettings{GuildID: guildID}
	settings.SetRole(normalizeID(roleID))
	settings.SetChannel(normalizeID(channelID))
	settings.SetMessage(message)

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return s.save(ctx, settings)
}

// UpdateChannel updates the celebration channel for a guild
func (s *guildSettingsService) UpdateChannel(ctx context.Context, guildID int64, channelID int64) (*entities.GuildSettings, error) {
	if channelID <= 0 {
		return nil, entities.ErrChannelRequired
	}

	settings, err := s.getOrDefault(ctx, guildID)
	if err != nil {
		return nil, err
	}
	settings.SetChannel(&channelID)

	return s.save(ctx, settings)
}

// UpdateRole updates the birthday role for a guild
func (s *guildSettingsService) UpdateRole(ctx context.Context, guildID int64, roleID *int64) (*entities.GuildSettings, error) {
	settings, err := s.getOrDefault(ctx, guildID)
	if err != nil {
		return nil, err
	}
	settings.SetRole(normalizeID(roleID))

	return s.save(ctx, settings)
}

// UpdateMessage updates the announcement template for a guild
func (s *guildSettingsService) UpdateMessage(ctx context.Context, guildID int64, message string) (*entities.GuildSettings, error) {
	if !strings.Contains(message, entities.MembersPlaceholder) {
		return nil, entities.ErrMissingPlaceholder
	}

	settings, err := s.getOrDefault(ctx, guildID)
	if err != nil {
		return nil, err
	}
	settings.SetMessage(message)

	return s.save(ctx, settings)
}

func (s *guildSettingsService) getOrDefault(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	settings, err := s.guildSettingsRepo.GetGuildSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}
	if settings == nil {
		settings = &entities.GuildSettings{GuildID: guildID}
	}
	return settings, nil
}

func (s *guildSettingsService) save(ctx context.Context, settings *entities.GuildSettings) (*entities.GuildSettings, error) {
	if err := s.guildSettingsRepo.UpsertGuildSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update guild settings: %w", err)
	}

	if err := s.eventPublisher.Publish(ctx, events.GuildSettingsUpdatedEvent{
		GuildID:   settings.GuildID,
		ChannelID: settings.ChannelID,
		RoleID:    settings.RoleID,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish guild settings updated event")
	}

	return settings, nil
}

// normalizeID maps zero or negative IDs to "not configured"
func normalizeID(id *int64) *int64 {
	if id == nil || *id <= 0 {
		return nil
	}
	return id
}
