package testutil

import (
	"time"

	"birthdaybot/domain/entities"
)

// CreateTestBirthday creates a birthday on the given calendar date
func CreateTestBirthday(guildID, memberID int64, year int, month time.Month, day int) *entities.Birthday {
	return &entities.Birthday{
		GuildID:  guildID,
		MemberID: memberID,
		Date:     time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
	}
}

// CreateTestGuildSettings creates fully configured settings
func CreateTestGuildSettings(guildID, channelID, roleID int64, message string) *entities.GuildSettings {
	settings := &entities.GuildSettings{GuildID: guildID}
	settings.SetChannel(&channelID)
	if roleID > 0 {
		settings.SetRole(&roleID)
	}
	if message != "" {
		settings.SetMessage(message)
	}
	return settings
}
