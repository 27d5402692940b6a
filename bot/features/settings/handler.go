package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"birthdaybot/bot/common"
	"birthdaybot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

const adminRequired = "Tu dois être administrateur pour utiliser cette commande."

// handleChannel handles /anniv-config channel
func (f *Feature) handleChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, ok := f.authorize(s, i)
	if !ok {
		return
	}

	var channelID int64
	for _, opt := range i.ApplicationCommandData().Options[0].Options {
		if opt.Name == "channel" {
			id, err := common.ParseID(opt.ChannelValue(nil).ID)
			if err != nil {
				common.RespondWithError(s, i, "Salon invalide.")
				return
			}
			channelID = id
		}
	}

	f.respond(s, i, func(ctx context.Context) (string, error) {
		return f.updateChannel(ctx, guildID, channelID)
	})
}

// handleRole handles /anniv-config role; omitting the role disables role handling
func (f *Feature) handleRole(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, ok := f.authorize(s, i)
	if !ok {
		return
	}

	var roleID *int64
	for _, opt := range i.ApplicationCommandData().Options[0].Options {
		if opt.Name == "role" {
			id, err := common.ParseID(opt.RoleValue(nil, i.GuildID).ID)
			if err != nil {
				common.RespondWithError(s, i, "Rôle invalide.")
				return
			}
			roleID = &id
		}
	}

	f.respond(s, i, func(ctx context.Context) (string, error) {
		return f.updateRole(ctx, guildID, roleID)
	})
}

// handleMessage handles /anniv-config message
func (f *Feature) handleMessage(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, ok := f.authorize(s, i)
	if !ok {
		return
	}

	var message string
	for _, opt := range i.ApplicationCommandData().Options[0].Options {
		if opt.Name == "text" {
			message = opt.StringValue()
		}
	}

	f.respond(s, i, func(ctx context.Context) (string, error) {
		return f.updateMessage(ctx, guildID, message)
	})
}

// handleShow handles /anniv-config show
func (f *Feature) handleShow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, ok := f.authorize(s, i)
	if !ok {
		return
	}

	f.respond(s, i, func(ctx context.Context) (string, error) {
		return f.describe(ctx, guildID)
	})
}

func (f *Feature) authorize(s *discordgo.Session, i *discordgo.InteractionCreate) (int64, bool) {
	if !common.IsInteractionAdmin(i) {
		common.RespondWithError(s, i, adminRequired)
		return 0, false
	}

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		common.RespondWithError(s, i, "Impossible de traiter la commande.")
		return 0, false
	}
	return guildID, true
}

func (f *Feature) respond(s *discordgo.Session, i *discordgo.InteractionCreate, action func(ctx context.Context) (string, error)) {
	message, err := action(context.Background())
	if err != nil {
		common.HandleError(s, i, err)
		return
	}
	common.RespondWithSuccess(s, i, message, true)
}

func (f *Feature) updateChannel(ctx context.Context, guildID, channelID int64) (string, error) {
	if _, err := f.settingsService.UpdateChannel(ctx, guildID, channelID); err != nil {
		return "", translate(err, "failed to update birthday channel")
	}
	return fmt.Sprintf("Salon d'anniversaire défini sur <#%d>", channelID), nil
}

func (f *Feature) updateRole(ctx context.Context, guildID int64, roleID *int64) (string, error) {
	if _, err := f.settingsService.UpdateRole(ctx, guildID, roleID); err != nil {
		return "", translate(err, "failed to update birthday role")
	}
	if roleID == nil {
		return "Rôle d'anniversaire désactivé", nil
	}
	return fmt.Sprintf("Rôle d'anniversaire défini sur <@&%d>", *roleID), nil
}

func (f *Feature) updateMessage(ctx context.Context, guildID int64, message string) (string, error) {
	if _, err := f.settingsService.UpdateMessage(ctx, guildID, message); err != nil {
		return "", translate(err, "failed to update birthday message")
	}
	return "Message d'anniversaire mis à jour", nil
}

func (f *Feature) describe(ctx context.Context, guildID int64) (string, error) {
	settings, err := f.settingsService.GetSettings(ctx, guildID)
	if err != nil {
		return "", common.NewSystemError(err, "failed to load guild settings")
	}

	var b strings.Builder
	b.WriteString("Configuration des anniversaires\n")
	if settings.HasChannel() {
		fmt.Fprintf(&b, "• Salon : <#%d>\n", *settings.ChannelID)
	} else {
		b.WriteString("• Salon : non configuré\n")
	}
	if settings.HasRole() {
		fmt.Fprintf(&b, "• Rôle : <@&%d>\n", *settings.RoleID)
	} else {
		b.WriteString("• Rôle : aucun\n")
	}
	fmt.Fprintf(&b, "• Message : %s", settings.MessageTemplate())
	return b.String(), nil
}

// translate maps validation failures to the messages administrators see
func translate(err error, logMessage string) error {
	switch {
	case errors.Is(err, entities.ErrChannelRequired):
		return common.NewUserError("Le canal est obligatoire", logMessage)
	case errors.Is(err, entities.ErrMissingPlaceholder):
		return common.NewUserError(`Le message doit contenir "@membres"`, logMessage)
	default:
		return common.NewSystemError(err, logMessage)
	}
}
