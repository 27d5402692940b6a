package settings

import (
	"birthdaybot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

// Feature handles guild birthday settings management
type Feature struct {
	settingsService interfaces.GuildSettingsService
}

// NewFeature creates a new settings feature instance
func NewFeature(settingsService interfaces.GuildSettingsService) *Feature {
	return &Feature{settingsService: settingsService}
}

// HandleCommand routes /anniv-config subcommands to appropriate handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "channel":
		f.handleChannel(s, i)
	case "role":
		f.handleRole(s, i)
	case "message":
		f.handleMessage(s, i)
	case "show":
		f.handleShow(s, i)
	}
}
