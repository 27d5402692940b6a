package dashboard

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestAssignableRoles_DropsEveryone(t *testing.T) {
	roles := assignableRoles("100", []*discordgo.Role{
		{ID: "100", Name: "@everyone"},
		{ID: "900", Name: "Anniversaire"},
	})
	assert.Equal(t, []NamedEntity{{ID: "900", Name: "Anniversaire"}}, roles)
}

func TestTextChannels(t *testing.T) {
	channels := textChannels([]*discordgo.Channel{
		{ID: "1", Name: "general", Type: discordgo.ChannelTypeGuildText},
		{ID: "2", Name: "Vocal", Type: discordgo.ChannelTypeGuildVoice},
		{ID: "3", Name: "Salons", Type: discordgo.ChannelTypeGuildCategory},
	})
	assert.Equal(t, []NamedEntity{{ID: "1", Name: "general"}}, channels)
}

func TestHumanMembers(t *testing.T) {
	members := humanMembers([]*discordgo.Member{
		{User: &discordgo.User{ID: "10", Username: "bob"}, Nick: "Bobby"},
		{User: &discordgo.User{ID: "11", Username: "carol", GlobalName: "Carol"}},
		{User: &discordgo.User{ID: "12", Username: "birthdaybot", Bot: true}},
		{User: nil},
	})

	assert.Equal(t, []MemberEntry{
		{ID: "10", Username: "bob", DisplayName: "Bobby"},
		{ID: "11", Username: "carol", DisplayName: "Carol"},
	}, members)
}
