package entities

import (
	"errors"
	"strings"
)

// MembersPlaceholder is replaced by the mention list when a birthday message is sent
const MembersPlaceholder = "@membres"

// DefaultBirthdayMessage is used when a guild has no usable template
const DefaultBirthdayMessage = "Joyeux anniversaire " + MembersPlaceholder + " !"

var (
	// ErrChannelRequired is returned when settings are saved without a celebration channel
	ErrChannelRequired = errors.New("celebration channel is required")
	// ErrMissingPlaceholder is returned when a message template lacks the members placeholder
	ErrMissingPlaceholder = errors.New("birthday message must contain " + MembersPlaceholder)
)

// GuildSettings represents per-guild birthday configuration
type GuildSettings struct {
	GuildID         int64   `db:"guild_id"`
	RoleID          *int64  `db:"role_id"`          // Nullable - role granted for the day (NULL = disabled)
	ChannelID       *int64  `db:"channel_id"`       // Nullable - channel for announcements
	BirthdayMessage *string `db:"birthday_message"` // Nullable - template containing @membres
}

// HasChannel checks if a celebration channel is configured
func (gs *GuildSettings) HasChannel() bool {
	return gs != nil && gs.ChannelID != nil && *gs.ChannelID > 0
}

// HasRole checks if a birthday role is configured
func (gs *GuildSettings) HasRole() bool {
	return gs != nil && gs.RoleID != nil && *gs.RoleID > 0
}

// MessageTemplate returns the configured template, or the default one when the
// stored template is absent or has no placeholder
func (gs *GuildSettings) MessageTemplate() string {
	if gs == nil || gs.BirthdayMessage == nil || !strings.Contains(*gs.BirthdayMessage, MembersPlaceholder) {
		return DefaultBirthdayMessage
	}
	return *gs.BirthdayMessage
}

// RenderMessage builds the announcement for the given member mentions
func (gs *GuildSettings) RenderMessage(mentions []string) string {
	return strings.ReplaceAll(gs.MessageTemplate(), MembersPlaceholder, strings.Join(mentions, ", "))
}

// Validate enforces the invariants required when an administrator saves settings
func (gs *GuildSettings) Validate() error {
	if !gs.HasChannel() {
		return ErrChannelRequired
	}
	if gs.BirthdayMessage == nil || !strings.Contains(*gs.BirthdayMessage, MembersPlaceholder) {
		return ErrMissingPlaceholder
	}
	return nil
}

// SetChannel sets the celebration channel ID
func (gs *GuildSettings) SetChannel(channelID *int64) {
	gs.ChannelID = channelID
}

// SetRole sets the birthday role ID (nil disables role handling)
func (gs *GuildSettings) SetRole(roleID *int64) {
	gs.RoleID = roleID
}

// SetMessage sets the announcement template
func (gs *GuildSettings) SetMessage(message string) {
	gs.BirthdayMessage = &message
}
