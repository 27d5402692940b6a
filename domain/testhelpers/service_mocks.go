package testhelpers

import (
	"context"

	"birthdaybot/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockBirthdayService is a mock implementation of BirthdayService
type MockBirthdayService struct {
	mock.Mock
}

func (m *MockBirthdayService) RegisterBirthday(ctx context.Context, guildID, memberID int64, rawDate string, source string) (*entities.Birthday, error) {
	args := m.Called(ctx, guildID, memberID, rawDate, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Birthday), args.Error(1)
}

func (m *MockBirthdayService) GetMemberBirthday(ctx context.Context, guildID, memberID int64) (*entities.Birthday, error) {
	args := m.Called(ctx, guildID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Birthday), args.Error(1)
}

func (m *MockBirthdayService) GetGuildBirthdays(ctx context.Context, guildID int64) ([]*entities.Birthday, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Birthday), args.Error(1)
}

// MockGuildSettingsService is a mock implementation of GuildSettingsService
type MockGuildSettingsService struct {
	mock.Mock
}

func (m *MockGuildSettingsService) GetSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsService) UpdateSettings(ctx context.Context, guildID int64, roleID, channelID *int64, message string) (*entities.GuildSettings, error) {
	args := m.Called(ctx, guildID, roleID, channelID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsService) UpdateChannel(ctx context.Context, guildID int64, channelID int64) (*entities.GuildSettings, error) {
	args := m.Called(ctx, guildID, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsService) UpdateRole(ctx context.Context, guildID int64, roleID *int64) (*entities.GuildSettings, error) {
	args := m.Called(ctx, guildID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsService) UpdateMessage(ctx context.Context, guildID int64, message string) (*entities.GuildSettings, error) {
	args := m.Called(ctx, guildID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildSettings), args.Error(1)
}
