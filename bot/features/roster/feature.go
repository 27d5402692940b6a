package roster

import (
	"context"
	"fmt"

	"birthdaybot/application"
	"birthdaybot/bot/common"
	"birthdaybot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature renders the paginated list of a guild's birthdays
type Feature struct {
	birthdayService interfaces.BirthdayService
	directory       application.GuildDirectory
}

// NewFeature creates a new roster feature instance
func NewFeature(birthdayService interfaces.BirthdayService, directory application.GuildDirectory) *Feature {
	return &Feature{
		birthdayService: birthdayService,
		directory:       directory,
	}
}

// HandleCommand handles /anniversaires
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		common.RespondWithError(s, i, "Cette commande s'utilise sur un serveur.")
		return
	}

	ctx := context.Background()
	view, err := f.loadPage(ctx, guildID, "", 0)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to load birthday roster"))
		return
	}
	if view.Total == 0 {
		common.RespondWithMessage(s, i, "Aucun anniversaire enregistré sur ce serveur.", true)
		return
	}

	embed := BuildEmbed(view.Entries, view.Page, view.Pages)
	components := BuildComponents(view.Page, view.Pages)
	if err := common.RespondWithEmbed(s, i, embed, components, false); err != nil {
		log.Errorf("Failed to send birthday roster: %v", err)
	}
}

// HandleInteraction handles the roster navigation buttons
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, page, err := ParseCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		log.Warnf("Ignoring roster interaction: %v", err)
		return
	}

	if action == actionClose {
		f.closeRoster(s, i)
		return
	}

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", i.GuildID, err)
		return
	}

	ctx := context.Background()
	view, err := f.loadPage(ctx, guildID, action, page)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to reload birthday roster"))
		return
	}

	embed := BuildEmbed(view.Entries, view.Page, view.Pages)
	if err := common.UpdateComponentMessage(s, i, embed, BuildComponents(view.Page, view.Pages)); err != nil {
		log.Errorf("Failed to update birthday roster: %v", err)
	}
}

func (f *Feature) closeRoster(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		log.Errorf("Failed to acknowledge roster close: %v", err)
		return
	}
	if i.Message == nil {
		return
	}
	if err := s.ChannelMessageDelete(i.ChannelID, i.Message.ID); err != nil {
		log.Errorf("Failed to delete birthday roster message: %v", err)
	}
}

// pageView is one rendered page of the roster
type pageView struct {
	Entries []Entry // only the entries of Page
	Page    int
	Pages   int
	Total   int
}

// loadPage reads the roster in calendar order, applies the navigation action and
// resolves member names for the displayed page only
func (f *Feature) loadPage(ctx context.Context, guildID int64, action string, page int) (*pageView, error) {
	birthdays, err := f.birthdayService.GetGuildBirthdays(ctx, guildID)
	if err != nil {
		return nil, err
	}

	view := &pageView{Total: len(birthdays), Pages: PageCount(len(birthdays))}
	view.Page = TargetPage(action, page, view.Pages)

	start, end := PageBounds(view.Page, view.Total)
	guild := &application.Guild{ID: guildID}
	view.Entries = make([]Entry, 0, end-start)
	for _, b := range birthdays[start:end] {
		view.Entries = append(view.Entries, Entry{
			MemberID: b.MemberID,
			Name:     f.memberLabel(ctx, guild, b.MemberID),
			Date:     b.DisplayDate(),
		})
	}
	return view, nil
}

func (f *Feature) memberLabel(ctx context.Context, guild *application.Guild, memberID int64) string {
	member, err := f.directory.ResolveMember(ctx, guild, memberID)
	if err != nil {
		return fmt.Sprintf("(%d)", memberID)
	}
	return common.EscapeMarkdown(fmt.Sprintf("%s (%s)", member.DisplayName, member.Username))
}
