package roster

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// PageSize is the number of birthdays listed per embed page
const PageSize = 15

const (
	embedTitle = "🎂 Anniversaires enregistrés"
	embedColor = 0xFFC0CB

	customIDPrefix = "roster_"
	actionPrev     = "prev"
	actionNext     = "next"
	actionClose    = "close"
)

// Entry is one line of the roster
type Entry struct {
	MemberID int64
	Name     string // already escaped, or "(<id>)" when the member is unknown
	Date     string // dd/mm/YYYY
}

// PageCount returns the number of pages needed, at least one
func PageCount(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + PageSize - 1) / PageSize
}

// ClampPage keeps page within [0, pages)
func ClampPage(page, pages int) int {
	if page < 0 {
		return 0
	}
	if page >= pages {
		return pages - 1
	}
	return page
}

// PageBounds returns the [start, end) slice of a total-length roster shown on page
func PageBounds(page, total int) (int, int) {
	page = ClampPage(page, PageCount(total))
	start := page * PageSize
	end := start + PageSize
	if end > total {
		end = total
	}
	return start, end
}

// BuildEmbed renders one page of the roster from that page's entries
func BuildEmbed(pageEntries []Entry, page, pages int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       embedTitle,
		Description: fmt.Sprintf("Page %d/%d", page+1, pages),
		Color:       embedColor,
	}
	for _, e := range pageEntries {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   e.Name,
			Value:  e.Date,
			Inline: false,
		})
	}
	return embed
}

// BuildComponents renders the ◀ ▶ ❌ buttons for the given page. The current
// page travels in the custom ID so navigation survives restarts.
func BuildComponents(page, pages int) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "◀",
					Style:    discordgo.SecondaryButton,
					CustomID: customID(actionPrev, page),
					Disabled: page <= 0,
				},
				discordgo.Button{
					Label:    "▶",
					Style:    discordgo.SecondaryButton,
					CustomID: customID(actionNext, page),
					Disabled: page >= pages-1,
				},
				discordgo.Button{
					Label:    "❌",
					Style:    discordgo.DangerButton,
					CustomID: customIDPrefix + actionClose,
				},
			},
		},
	}
}

func customID(action string, page int) string {
	return customIDPrefix + action + "_" + strconv.Itoa(page)
}

// ParseCustomID returns the button action and the page it was rendered on
func ParseCustomID(id string) (action string, page int, err error) {
	rest, ok := strings.CutPrefix(id, customIDPrefix)
	if !ok {
		return "", 0, fmt.Errorf("not a roster component: %q", id)
	}
	if rest == actionClose {
		return actionClose, 0, nil
	}

	action, pageStr, ok := strings.Cut(rest, "_")
	if !ok || (action != actionPrev && action != actionNext) {
		return "", 0, fmt.Errorf("unknown roster action: %q", id)
	}
	page, err = strconv.Atoi(pageStr)
	if err != nil || page < 0 {
		return "", 0, fmt.Errorf("invalid roster page in %q", id)
	}
	return action, page, nil
}

// TargetPage applies a navigation action to the page it was clicked on
func TargetPage(action string, page, pages int) int {
	switch action {
	case actionPrev:
		page--
	case actionNext:
		page++
	}
	return ClampPage(page, pages)
}
