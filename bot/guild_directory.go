package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"birthdaybot/application"
	"birthdaybot/bot/common"

	"github.com/bwmarrin/discordgo"
)

// discordAPI is the subset of *discordgo.Session REST calls the directory uses
type discordAPI interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// GuildDirectory resolves guild entities from the gateway state cache, falling
// back to the REST API, and maps Discord errors onto the application taxonomy.
type GuildDirectory struct {
	api   discordAPI
	state *discordgo.State
}

var _ application.GuildDirectory = (*GuildDirectory)(nil)

// NewGuildDirectory creates a directory backed by a discordgo session
func NewGuildDirectory(session *discordgo.Session) *GuildDirectory {
	return &GuildDirectory{api: session, state: session.State}
}

func (d *GuildDirectory) ResolveGuild(ctx context.Context, guildID int64) (*application.Guild, error) {
	id := common.FormatID(guildID)

	if d.state != nil {
		if g, err := d.state.Guild(id); err == nil {
			return &application.Guild{ID: guildID, Name: g.Name}, nil
		}
	}

	g, err := d.api.Guild(id, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("resolve guild %d: %w", guildID, mapDiscordError(err))
	}
	return &application.Guild{ID: guildID, Name: g.Name}, nil
}

func (d *GuildDirectory) ResolveChannel(ctx context.Context, guild *application.Guild, channelID int64) (*application.Channel, error) {
	id := common.FormatID(channelID)

	var ch *discordgo.Channel
	if d.state != nil {
		ch, _ = d.state.Channel(id)
	}
	if ch == nil {
		var err error
		ch, err = d.api.Channel(id, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("resolve channel %d: %w", channelID, mapDiscordError(err))
		}
	}

	// A channel configured for one guild but living in another is treated as missing
	if ch.GuildID != common.FormatID(guild.ID) {
		return nil, fmt.Errorf("channel %d does not belong to guild %d: %w", channelID, guild.ID, application.ErrNotFound)
	}

	return &application.Channel{ID: channelID, GuildID: guild.ID, Name: ch.Name}, nil
}

func (d *GuildDirectory) ResolveMember(ctx context.Context, guild *application.Guild, memberID int64) (*application.Member, error) {
	guildID := common.FormatID(guild.ID)
	userID := common.FormatID(memberID)

	var m *discordgo.Member
	if d.state != nil {
		m, _ = d.state.Member(guildID, userID)
	}
	if m == nil {
		var err error
		m, err = d.api.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("resolve member %d: %w", memberID, mapDiscordError(err))
		}
	}

	return toMember(guild.ID, memberID, m), nil
}

func (d *GuildDirectory) ResolveRole(ctx context.Context, guild *application.Guild, roleID int64) (*application.Role, error) {
	guildID := common.FormatID(guild.ID)
	id := common.FormatID(roleID)

	if d.state != nil {
		if r, err := d.state.Role(guildID, id); err == nil {
			return &application.Role{ID: roleID, GuildID: guild.ID, Name: r.Name}, nil
		}
	}

	roles, err := d.api.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("resolve role %d: %w", roleID, mapDiscordError(err))
	}
	for _, r := range roles {
		if r.ID == id {
			return &application.Role{ID: roleID, GuildID: guild.ID, Name: r.Name}, nil
		}
	}
	return nil, fmt.Errorf("role %d not in guild %d: %w", roleID, guild.ID, application.ErrNotFound)
}

func (d *GuildDirectory) SendMessage(ctx context.Context, channel *application.Channel, content string) error {
	if _, err := d.api.ChannelMessageSend(common.FormatID(channel.ID), content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send message to channel %d: %w", channel.ID, mapDiscordError(err))
	}
	return nil
}

func (d *GuildDirectory) GrantRole(ctx context.Context, member *application.Member, role *application.Role) error {
	err := d.api.GuildMemberRoleAdd(
		common.FormatID(member.GuildID),
		common.FormatID(member.ID),
		common.FormatID(role.ID),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("grant role %d to member %d: %w", role.ID, member.ID, mapDiscordError(err))
	}
	return nil
}

func (d *GuildDirectory) RevokeRole(ctx context.Context, member *application.Member, role *application.Role) error {
	err := d.api.GuildMemberRoleRemove(
		common.FormatID(member.GuildID),
		common.FormatID(member.ID),
		common.FormatID(role.ID),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("revoke role %d from member %d: %w", role.ID, member.ID, mapDiscordError(err))
	}
	return nil
}

func toMember(guildID, memberID int64, m *discordgo.Member) *application.Member {
	member := &application.Member{
		ID:          memberID,
		GuildID:     guildID,
		Mention:     common.GetUserMention(memberID),
		DisplayName: common.MemberDisplayName(m),
	}
	if m.User != nil {
		member.Username = m.User.Username
		member.Bot = m.User.Bot
	}
	for _, r := range m.Roles {
		if id, err := common.ParseID(r); err == nil {
			member.RoleIDs = append(member.RoleIDs, id)
		}
	}
	return member
}

// mapDiscordError translates REST failures into ErrNotFound / ErrPermissionDenied
func mapDiscordError(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}

	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
			return fmt.Errorf("%w: %v", application.ErrPermissionDenied, err)
		case discordgo.ErrCodeUnknownGuild, discordgo.ErrCodeUnknownChannel,
			discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownRole:
			return fmt.Errorf("%w: %v", application.ErrNotFound, err)
		}
	}

	if restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusForbidden:
			return fmt.Errorf("%w: %v", application.ErrPermissionDenied, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", application.ErrNotFound, err)
		}
	}

	return err
}
