package dashboard

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// memberPageSize matches the single member page the dashboard displays
const memberPageSize = 1000

// NamedEntity is a role or channel option shown in the configuration form
type NamedEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MemberEntry is a human member whose birthday can be edited
type MemberEntry struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// GuildDetails is what the bot can see of a guild
type GuildDetails struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Roles    []NamedEntity `json:"roles"`
	Channels []NamedEntity `json:"channels"`
	Members  []MemberEntry `json:"members"`
}

// GuildCatalog exposes the bot's view of guilds to the dashboard
type GuildCatalog interface {
	// HasGuild reports whether the bot is a member of the guild
	HasGuild(guildID string) bool
	GuildDetails(ctx context.Context, guildID string) (*GuildDetails, error)
}

// BotCatalog reads guild data with the bot's own session
type BotCatalog struct {
	session *discordgo.Session
}

// NewBotCatalog creates a catalog backed by the bot session
func NewBotCatalog(session *discordgo.Session) *BotCatalog {
	return &BotCatalog{session: session}
}

func (c *BotCatalog) HasGuild(guildID string) bool {
	_, err := c.session.State.Guild(guildID)
	return err == nil
}

func (c *BotCatalog) GuildDetails(ctx context.Context, guildID string) (*GuildDetails, error) {
	opt := discordgo.WithContext(ctx)

	name := ""
	if g, err := c.session.State.Guild(guildID); err == nil {
		name = g.Name
	} else {
		g, err := c.session.Guild(guildID, opt)
		if err != nil {
			return nil, fmt.Errorf("failed to load guild %s: %w", guildID, err)
		}
		name = g.Name
	}

	roles, err := c.session.GuildRoles(guildID, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles of guild %s: %w", guildID, err)
	}
	channels, err := c.session.GuildChannels(guildID, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to load channels of guild %s: %w", guildID, err)
	}
	members, err := c.session.GuildMembers(guildID, "", memberPageSize, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to load members of guild %s: %w", guildID, err)
	}

	return &GuildDetails{
		ID:       guildID,
		Name:     name,
		Roles:    assignableRoles(guildID, roles),
		Channels: textChannels(channels),
		Members:  humanMembers(members),
	}, nil
}

// assignableRoles drops @everyone, whose ID is the guild ID
func assignableRoles(guildID string, roles []*discordgo.Role) []NamedEntity {
	result := make([]NamedEntity, 0, len(roles))
	for _, r := range roles {
		if r.ID == guildID {
			continue
		}
		result = append(result, NamedEntity{ID: r.ID, Name: r.Name})
	}
	return result
}

func textChannels(channels []*discordgo.Channel) []NamedEntity {
	result := make([]NamedEntity, 0, len(channels))
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		result = append(result, NamedEntity{ID: ch.ID, Name: ch.Name})
	}
	return result
}

func humanMembers(members []*discordgo.Member) []MemberEntry {
	result := make([]MemberEntry, 0, len(members))
	for _, m := range members {
		if m.User == nil || m.User.Bot {
			continue
		}
		display := m.Nick
		if display == "" {
			display = m.User.GlobalName
		}
		if display == "" {
			display = m.User.Username
		}
		result = append(result, MemberEntry{
			ID:          m.User.ID,
			Username:    m.User.Username,
			DisplayName: display,
		})
	}
	return result
}
