package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const (
	commandSetBirthday = "set-anniv"
	commandRoster      = "anniversaires"
	commandConfig      = "anniv-config"
)

var adminPermission int64 = discordgo.PermissionAdministrator

// commandDefinitions returns every slash command the bot exposes
func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        commandSetBirthday,
			Description: "Enregistre ta date d'anniversaire",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "date",
					Description: "Date au format AAAA-MM-JJ",
					Required:    true,
				},
			},
		},
		{
			Name:        commandRoster,
			Description: "Affiche les anniversaires enregistrés sur le serveur",
		},
		{
			Name:                     commandConfig,
			Description:              "Configure les annonces d'anniversaire",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "channel",
					Description: "Salon où sont annoncés les anniversaires",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionChannel,
							Name:         "channel",
							Description:  "Salon textuel",
							Required:     true,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "role",
					Description: "Rôle attribué le jour de l'anniversaire (vide pour désactiver)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Rôle d'anniversaire",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "message",
					Description: "Message d'annonce, doit contenir @membres",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "text",
							Description: "Exemple : Joyeux anniversaire @membres !",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Affiche la configuration actuelle",
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID
	for _, cmd := range commandDefinitions() {
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}
	return nil
}
