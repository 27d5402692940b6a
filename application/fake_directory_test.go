package application

import (
	"context"
	"fmt"
	"sync"
)

// fakeDirectory is an in-memory GuildDirectory that records every call
type fakeDirectory struct {
	mu sync.Mutex

	guilds   map[int64]*Guild
	channels map[int64]*Channel
	members  map[int64]map[int64]*Member
	roles    map[int64]*Role

	sendErr   map[int64]error // by channel
	grantErr  map[int64]error // by member
	revokeErr map[int64]error // by member

	panicOnChannel map[int64]bool // by guild

	calls   []string
	sent    []sentMessage
	granted []int64
	revoked []int64
}

type sentMessage struct {
	ChannelID int64
	Content   string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		guilds:    make(map[int64]*Guild),
		channels:  make(map[int64]*Channel),
		members:   make(map[int64]map[int64]*Member),
		roles:     make(map[int64]*Role),
		sendErr:   make(map[int64]error),
		grantErr:  make(map[int64]error),
		revokeErr: make(map[int64]error),

		panicOnChannel: make(map[int64]bool),
	}
}

func (d *fakeDirectory) addGuild(id int64) *fakeDirectory {
	d.guilds[id] = &Guild{ID: id, Name: fmt.Sprintf("guild-%d", id)}
	return d
}

func (d *fakeDirectory) addChannel(guildID, channelID int64) *fakeDirectory {
	d.channels[channelID] = &Channel{ID: channelID, GuildID: guildID}
	return d
}

func (d *fakeDirectory) addRole(guildID, roleID int64) *fakeDirectory {
	d.roles[roleID] = &Role{ID: roleID, GuildID: guildID}
	return d
}

func (d *fakeDirectory) addMember(guildID, memberID int64, roleIDs ...int64) *fakeDirectory {
	if d.members[guildID] == nil {
		d.members[guildID] = make(map[int64]*Member)
	}
	d.members[guildID][memberID] = &Member{
		ID:      memberID,
		GuildID: guildID,
		Mention: fmt.Sprintf("<@%d>", memberID),
		RoleIDs: roleIDs,
	}
	return d
}

func (d *fakeDirectory) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *fakeDirectory) ResolveGuild(_ context.Context, guildID int64) (*Guild, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("guild %d", guildID)
	if g, ok := d.guilds[guildID]; ok {
		return g, nil
	}
	return nil, fmt.Errorf("guild %d: %w", guildID, ErrNotFound)
}

func (d *fakeDirectory) ResolveChannel(_ context.Context, guild *Guild, channelID int64) (*Channel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("channel %d", channelID)
	if d.panicOnChannel[guild.ID] {
		var broken map[int64]int
		broken[channelID] = 1
	}
	if c, ok := d.channels[channelID]; ok && c.GuildID == guild.ID {
		return c, nil
	}
	return nil, fmt.Errorf("channel %d: %w", channelID, ErrNotFound)
}

func (d *fakeDirectory) ResolveMember(_ context.Context, guild *Guild, memberID int64) (*Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("member %d", memberID)
	if m, ok := d.members[guild.ID][memberID]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("member %d: %w", memberID, ErrNotFound)
}

func (d *fakeDirectory) ResolveRole(_ context.Context, guild *Guild, roleID int64) (*Role, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("role %d", roleID)
	if r, ok := d.roles[roleID]; ok && r.GuildID == guild.ID {
		return r, nil
	}
	return nil, fmt.Errorf("role %d: %w", roleID, ErrNotFound)
}

func (d *fakeDirectory) SendMessage(_ context.Context, channel *Channel, content string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("send %d", channel.ID)
	if err := d.sendErr[channel.ID]; err != nil {
		return err
	}
	d.sent = append(d.sent, sentMessage{ChannelID: channel.ID, Content: content})
	return nil
}

func (d *fakeDirectory) GrantRole(_ context.Context, member *Member, role *Role) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("grant %d %d", member.ID, role.ID)
	if err := d.grantErr[member.ID]; err != nil {
		return err
	}
	d.granted = append(d.granted, member.ID)
	return nil
}

func (d *fakeDirectory) RevokeRole(_ context.Context, member *Member, role *Role) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("revoke %d %d", member.ID, role.ID)
	if err := d.revokeErr[member.ID]; err != nil {
		return err
	}
	d.revoked = append(d.revoked, member.ID)
	return nil
}
