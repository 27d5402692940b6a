package services

import (
	"context"
	"errors"
	"fmt"

	"birthdaybot/domain/entities"
	"birthdaybot/domain/interfaces"
	"birthdaybot/events"

	log "github.com/sirupsen/logrus"
)

// ErrInvalidBirthdayDate is returned when a date is not a valid YYYY-MM-DD calendar date
var ErrInvalidBirthdayDate = errors.New("invalid birthday date, expected YYYY-MM-DD")

// Registration sources carried by BirthdayRegisteredEvent
const (
	SourceCommand   = "command"
	SourceDashboard = "dashboard"
)

// birthdayService implements the BirthdayService interface
type birthdayService struct {
	birthdayRepo   interfaces.BirthdayRepository
	eventPublisher events.Publisher
}

// NewBirthdayService creates a new birthday service
func NewBirthdayService(birthdayRepo interfaces.BirthdayRepository, eventPublisher events.Publisher) interfaces.BirthdayService {
	return &birthdayService{
		birthdayRepo:   birthdayRepo,
		eventPublisher: eventPublisher,
	}
}

// RegisterBirthday validates and stores a member's birthday, overwriting any previous date
func (s *birthdayService) RegisterBirthday(ctx context.Context, guildID, memberID int64, rawDate string, source string) (*entities.Birthday, error) {
	if guildID <= 0 || memberID <= 0 {
		return nil, fmt.Errorf("invalid guild %d or member %d", guildID, memberID)
	}

	date, err := entities.ParseBirthdayDate(rawDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBirthdayDate, err)
	}

	birthday := &entities.Birthday{
		GuildID:  guildID,
		MemberID: memberID,
		Date:     date,
	}
	if err := s.birthdayRepo.Upsert(ctx, birthday); err != nil {
		return nil, fmt.Errorf("failed to save birthday: %w", err)
	}

	if err := s.eventPublisher.Publish(ctx, events.BirthdayRegisteredEvent{
		GuildID:  guildID,
		MemberID: memberID,
		Date:     birthday.ISODate(),
		Source:   source,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish birthday registered event")
	}

	return birthday, nil
}

// GetMemberBirthday returns the member's stored birthday
func (s *birthdayService) GetMemberBirthday(ctx context.Context, guildID, memberID int64) (*entities.Birthday, error) {
	birthday, err := s.birthdayRepo.GetByMember(ctx, guildID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get birthday: %w", err)
	}
	return birthday, nil
}

// GetGuildBirthdays returns every birthday stored for the guild
func (s *birthdayService) GetGuildBirthdays(ctx context.Context, guildID int64) ([]*entities.Birthday, error) {
	birthdays, err := s.birthdayRepo.GetByGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild birthdays: %w", err)
	}
	return birthdays, nil
}
