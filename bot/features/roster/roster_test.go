package roster

import (
	"context"
	"fmt"
	"testing"
	"time"

	"birthdaybot/application"
	"birthdaybot/domain/entities"
	"birthdaybot/domain/testhelpers"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memberDirectory resolves members from a map and refuses everything else
type memberDirectory struct {
	members  map[int64]*application.Member
	resolved []int64
}

func (d *memberDirectory) ResolveGuild(context.Context, int64) (*application.Guild, error) {
	return nil, application.ErrNotFound
}

func (d *memberDirectory) ResolveChannel(context.Context, *application.Guild, int64) (*application.Channel, error) {
	return nil, application.ErrNotFound
}

func (d *memberDirectory) ResolveMember(_ context.Context, _ *application.Guild, memberID int64) (*application.Member, error) {
	d.resolved = append(d.resolved, memberID)
	if m, ok := d.members[memberID]; ok {
		return m, nil
	}
	return nil, application.ErrNotFound
}

func (d *memberDirectory) ResolveRole(context.Context, *application.Guild, int64) (*application.Role, error) {
	return nil, application.ErrNotFound
}

func (d *memberDirectory) SendMessage(context.Context, *application.Channel, string) error {
	return nil
}

func (d *memberDirectory) GrantRole(context.Context, *application.Member, *application.Role) error {
	return nil
}

func (d *memberDirectory) RevokeRole(context.Context, *application.Member, *application.Role) error {
	return nil
}

func makeEntries(n int) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{MemberID: int64(i + 1), Name: fmt.Sprintf("member %d", i+1), Date: "01/01/2000"}
	}
	return entries
}

func buttons(t *testing.T, components []discordgo.MessageComponent) []discordgo.Button {
	t.Helper()
	require.Len(t, components, 1)
	row, ok := components[0].(discordgo.ActionsRow)
	require.True(t, ok)

	out := make([]discordgo.Button, 0, len(row.Components))
	for _, c := range row.Components {
		b, ok := c.(discordgo.Button)
		require.True(t, ok)
		out = append(out, b)
	}
	return out
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{0, 1},
		{1, 1},
		{15, 1},
		{16, 2},
		{30, 2},
		{31, 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d entries", tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, PageCount(tt.total))
		})
	}
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		page, total, start, end int
	}{
		{0, 0, 0, 0},
		{0, 32, 0, 15},
		{1, 32, 15, 30},
		{2, 32, 30, 32},
		{9, 32, 30, 32},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d of %d", tt.page, tt.total), func(t *testing.T) {
			start, end := PageBounds(tt.page, tt.total)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestBuildEmbed(t *testing.T) {
	entries := makeEntries(32)

	first := BuildEmbed(entries[:15], 0, 3)
	assert.Equal(t, "🎂 Anniversaires enregistrés", first.Title)
	assert.Equal(t, "Page 1/3", first.Description)
	assert.Equal(t, 0xFFC0CB, first.Color)
	require.Len(t, first.Fields, PageSize)
	assert.Equal(t, "member 1", first.Fields[0].Name)
	assert.Equal(t, "01/01/2000", first.Fields[0].Value)

	last := BuildEmbed(entries[30:], 2, 3)
	assert.Equal(t, "Page 3/3", last.Description)
	require.Len(t, last.Fields, 2)
	assert.Equal(t, "member 31", last.Fields[0].Name)
}

func TestBuildComponents(t *testing.T) {
	t.Run("single page disables navigation", func(t *testing.T) {
		b := buttons(t, BuildComponents(0, 1))
		require.Len(t, b, 3)
		assert.True(t, b[0].Disabled)
		assert.True(t, b[1].Disabled)
		assert.False(t, b[2].Disabled)
		assert.Equal(t, discordgo.DangerButton, b[2].Style)
	})

	t.Run("first page", func(t *testing.T) {
		b := buttons(t, BuildComponents(0, 3))
		assert.True(t, b[0].Disabled)
		assert.False(t, b[1].Disabled)
	})

	t.Run("middle page", func(t *testing.T) {
		b := buttons(t, BuildComponents(1, 3))
		assert.False(t, b[0].Disabled)
		assert.False(t, b[1].Disabled)
		assert.Equal(t, "roster_prev_1", b[0].CustomID)
		assert.Equal(t, "roster_next_1", b[1].CustomID)
	})

	t.Run("last page", func(t *testing.T) {
		b := buttons(t, BuildComponents(2, 3))
		assert.False(t, b[0].Disabled)
		assert.True(t, b[1].Disabled)
	})
}

func TestParseCustomID(t *testing.T) {
	tests := []struct {
		id         string
		wantAction string
		wantPage   int
		wantErr    bool
	}{
		{id: "roster_prev_2", wantAction: actionPrev, wantPage: 2},
		{id: "roster_next_0", wantAction: actionNext, wantPage: 0},
		{id: "roster_close", wantAction: actionClose},
		{id: "roster_jump_1", wantErr: true},
		{id: "roster_next_x", wantErr: true},
		{id: "roster_next_-1", wantErr: true},
		{id: "stats_page_Bits", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			action, page, err := ParseCustomID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, action)
			assert.Equal(t, tt.wantPage, page)
		})
	}
}

func TestTargetPage(t *testing.T) {
	assert.Equal(t, 1, TargetPage(actionNext, 0, 3))
	assert.Equal(t, 2, TargetPage(actionNext, 2, 3))
	assert.Equal(t, 0, TargetPage(actionPrev, 0, 3))
	assert.Equal(t, 0, TargetPage(actionPrev, 1, 3))
	// The roster shrank since the message was rendered
	assert.Equal(t, 0, TargetPage(actionNext, 4, 1))
}

func TestFeature_LoadPage(t *testing.T) {
	ctx := context.Background()
	svc := new(testhelpers.MockBirthdayService)
	svc.On("GetGuildBirthdays", ctx, int64(1)).Return([]*entities.Birthday{
		{GuildID: 1, MemberID: 10, Date: time.Date(1990, time.January, 9, 0, 0, 0, 0, time.UTC)},
		{GuildID: 1, MemberID: 11, Date: time.Date(1985, time.March, 2, 0, 0, 0, 0, time.UTC)},
	}, nil)

	directory := &memberDirectory{members: map[int64]*application.Member{
		10: {ID: 10, GuildID: 1, DisplayName: "*Star*", Username: "star_girl"},
	}}

	view, err := NewFeature(svc, directory).loadPage(ctx, 1, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, 1, view.Pages)
	require.Len(t, view.Entries, 2)

	assert.Equal(t, `\*Star\* (star\_girl)`, view.Entries[0].Name)
	assert.Equal(t, "09/01/1990", view.Entries[0].Date)
	assert.Equal(t, "(11)", view.Entries[1].Name)
	assert.Equal(t, "02/03/1985", view.Entries[1].Date)
}

func TestFeature_LoadPageResolvesOnlyDisplayedMembers(t *testing.T) {
	ctx := context.Background()
	birthdays := make([]*entities.Birthday, 300)
	for i := range birthdays {
		birthdays[i] = &entities.Birthday{
			GuildID:  1,
			MemberID: int64(i + 1),
			Date:     time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	svc := new(testhelpers.MockBirthdayService)
	svc.On("GetGuildBirthdays", ctx, int64(1)).Return(birthdays, nil)

	t.Run("first page", func(t *testing.T) {
		directory := &memberDirectory{}
		view, err := NewFeature(svc, directory).loadPage(ctx, 1, "", 0)
		require.NoError(t, err)

		assert.Equal(t, 20, view.Pages)
		assert.Len(t, view.Entries, PageSize)
		assert.Len(t, directory.resolved, PageSize)
		assert.Equal(t, int64(1), directory.resolved[0])
	})

	t.Run("next page", func(t *testing.T) {
		directory := &memberDirectory{}
		view, err := NewFeature(svc, directory).loadPage(ctx, 1, actionNext, 3)
		require.NoError(t, err)

		assert.Equal(t, 4, view.Page)
		assert.Len(t, directory.resolved, PageSize)
		assert.Equal(t, int64(61), directory.resolved[0])
		assert.Equal(t, int64(61), view.Entries[0].MemberID)
	})

	t.Run("empty roster", func(t *testing.T) {
		empty := new(testhelpers.MockBirthdayService)
		empty.On("GetGuildBirthdays", ctx, int64(2)).Return([]*entities.Birthday{}, nil)
		directory := &memberDirectory{}

		view, err := NewFeature(empty, directory).loadPage(ctx, 2, "", 0)
		require.NoError(t, err)
		assert.Equal(t, 0, view.Total)
		assert.Empty(t, view.Entries)
		assert.Empty(t, directory.resolved)
	})
}
