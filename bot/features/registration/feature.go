package registration

import (
	"context"
	"errors"
	"fmt"

	"birthdaybot/bot/common"
	"birthdaybot/domain/interfaces"
	"birthdaybot/domain/services"

	"github.com/bwmarrin/discordgo"
)

// Feature handles self-service birthday registration
type Feature struct {
	birthdayService interfaces.BirthdayService
}

// NewFeature creates a new registration feature instance
func NewFeature(birthdayService interfaces.BirthdayService) *Feature {
	return &Feature{birthdayService: birthdayService}
}

// HandleCommand handles /set-anniv date:<YYYY-MM-DD>
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		common.RespondWithError(s, i, "Cette commande s'utilise sur un serveur.")
		return
	}

	var rawDate string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "date" {
			rawDate = opt.StringValue()
		}
	}

	reply, err := f.register(context.Background(), i.GuildID, common.InteractionUserID(i), rawDate)
	if err != nil {
		common.HandleError(s, i, err)
		return
	}

	common.RespondWithMessage(s, i, reply, false)
}

// register stores the date and returns the confirmation shown to the member
func (f *Feature) register(ctx context.Context, guildIDStr, userIDStr, rawDate string) (string, error) {
	guildID, err := common.ParseID(guildIDStr)
	if err != nil {
		return "", common.NewSystemError(err, "failed to parse guild ID")
	}
	userID, err := common.ParseID(userIDStr)
	if err != nil {
		return "", common.NewSystemError(err, "failed to parse user ID")
	}

	birthday, err := f.birthdayService.RegisterBirthday(ctx, guildID, userID, rawDate, services.SourceCommand)
	if errors.Is(err, services.ErrInvalidBirthdayDate) {
		return "", common.NewUserError(
			"Le format de la date est incorrect. Utilise le format AAAA-MM-JJ.",
			fmt.Sprintf("rejected birthday date %q", rawDate),
		)
	}
	if err != nil {
		return "", common.NewSystemError(err, "failed to register birthday")
	}

	return fmt.Sprintf("Ton anniversaire a été enregistré pour le %s !", birthday.ISODate()), nil
}
