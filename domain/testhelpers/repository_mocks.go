package testhelpers

import (
	"context"
	"time"

	"birthdaybot/domain/entities"
	"birthdaybot/events"

	"github.com/stretchr/testify/mock"
)

// MockBirthdayRepository is a mock implementation of BirthdayRepository
type MockBirthdayRepository struct {
	mock.Mock
}

func (m *MockBirthdayRepository) GetByDate(ctx context.Context, month time.Month, day int) ([]entities.BirthdayMatch, error) {
	args := m.Called(ctx, month, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.BirthdayMatch), args.Error(1)
}

func (m *MockBirthdayRepository) Upsert(ctx context.Context, birthday *entities.Birthday) error {
	args := m.Called(ctx, birthday)
	return args.Error(0)
}

func (m *MockBirthdayRepository) GetByMember(ctx context.Context, guildID, memberID int64) (*entities.Birthday, error) {
	args := m.Called(ctx, guildID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Birthday), args.Error(1)
}

func (m *MockBirthdayRepository) GetByGuild(ctx context.Context, guildID int64) ([]*entities.Birthday, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Birthday), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetGuildSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) UpsertGuildSettings(ctx context.Context, settings *entities.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of events.Publisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// RecordingPublisher collects published events without expectations
type RecordingPublisher struct {
	Events []events.Event
}

func (p *RecordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.Events = append(p.Events, event)
	return nil
}

// OfType returns the recorded events of the given type
func (p *RecordingPublisher) OfType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, e := range p.Events {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}
