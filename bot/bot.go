package bot

import (
	"fmt"
	"strings"
	"sync"

	"birthdaybot/application"
	"birthdaybot/bot/features/registration"
	"birthdaybot/bot/features/roster"
	"birthdaybot/bot/features/settings"
	"birthdaybot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token string
}

// Bot manages the Discord session and the birthday feature modules
type Bot struct {
	config    Config
	session   *discordgo.Session
	directory *GuildDirectory

	ready     chan struct{}
	readyOnce sync.Once

	registration *registration.Feature
	roster       *roster.Feature
	settings     *settings.Feature
}

// New creates the Discord session and wires the features. Call Open to connect.
func New(config Config, birthdayService interfaces.BirthdayService, settingsService interfaces.GuildSettingsService) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	directory := NewGuildDirectory(dg)

	bot := &Bot{
		config:       config,
		session:      dg,
		directory:    directory,
		ready:        make(chan struct{}),
		registration: registration.NewFeature(birthdayService),
		roster:       roster.NewFeature(birthdayService, directory),
		settings:     settings.NewFeature(settingsService),
	}

	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleInteractions)

	return bot, nil
}

// Open connects to the gateway and registers the slash commands
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return fmt.Errorf("error registering commands: %w", err)
	}

	return nil
}

// Close gracefully shuts down the bot
func (b *Bot) Close() error {
	return b.session.Close()
}

// Ready is closed once the gateway delivered the first Ready event
func (b *Bot) Ready() <-chan struct{} {
	return b.ready
}

// Directory returns the guild directory used by the birthday job and the dashboard
func (b *Bot) Directory() application.GuildDirectory {
	return b.directory
}

// GetSession returns the Discord session
func (b *Bot) GetSession() *discordgo.Session {
	return b.session
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Bot connected to Discord")

	b.readyOnce.Do(func() { close(b.ready) })
}

// handleCommands routes slash commands to appropriate handlers
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case commandSetBirthday:
		b.registration.HandleCommand(s, i)
	case commandRoster:
		b.roster.HandleCommand(s, i)
	case commandConfig:
		b.settings.HandleCommand(s, i)
	}
}

// handleInteractions routes component interactions to appropriate features
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, "roster_"):
		b.roster.HandleInteraction(s, i)
	}
}
