package application

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by a GuildDirectory when a guild, channel, member
	// or role cannot be resolved. The job treats it as a transient absence.
	ErrNotFound = errors.New("discord entity not found")
	// ErrPermissionDenied is returned when the bot lacks the rights for an action
	ErrPermissionDenied = errors.New("missing discord permissions")
)

// Guild is a resolved Discord guild
type Guild struct {
	ID   int64
	Name string
}

// Channel is a resolved text channel of a guild
type Channel struct {
	ID      int64
	GuildID int64
	Name    string
}

// Member is a resolved guild member
type Member struct {
	ID          int64
	GuildID     int64
	Username    string
	DisplayName string
	Mention     string
	RoleIDs     []int64
	Bot         bool
}

// HasRole reports whether the member currently holds the role
func (m *Member) HasRole(roleID int64) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Role is a resolved guild role
type Role struct {
	ID      int64
	GuildID int64
	Name    string
}

// GuildDirectory resolves Discord entities and performs the job's side effects.
// Resolve methods wrap ErrNotFound; actions wrap ErrPermissionDenied when the
// bot is not allowed to perform them.
type GuildDirectory interface {
	ResolveGuild(ctx context.Context, guildID int64) (*Guild, error)
	ResolveChannel(ctx context.Context, guild *Guild, channelID int64) (*Channel, error)
	ResolveMember(ctx context.Context, guild *Guild, memberID int64) (*Member, error)
	ResolveRole(ctx context.Context, guild *Guild, roleID int64) (*Role, error)

	SendMessage(ctx context.Context, channel *Channel, content string) error
	GrantRole(ctx context.Context, member *Member, role *Role) error
	RevokeRole(ctx context.Context, member *Member, role *Role) error
}

// BirthdayRunner evaluates one reference date
type BirthdayRunner interface {
	Run(ctx context.Context, today time.Time) *RunReport
}
