package entities

import (
	"fmt"
	"strings"
	"time"
)

// BirthdayDateLayout is the ISO layout accepted from users and the dashboard
const BirthdayDateLayout = "2006-01-02"

// BirthdayDisplayLayout is the day-first layout shown in the roster
const BirthdayDisplayLayout = "02/01/2006"

// Birthday is a member's stored birthday in one guild
type Birthday struct {
	GuildID  int64     `db:"guild_id"`
	MemberID int64     `db:"member_id"`
	Date     time.Time `db:"birthday_date"` // Only year, month and day are meaningful
}

// BirthdayMatch is a (guild, member) pair returned by the recurring-date query
type BirthdayMatch struct {
	GuildID  int64 `db:"guild_id"`
	MemberID int64 `db:"member_id"`
}

// ParseBirthdayDate parses a YYYY-MM-DD date as a calendar date in UTC
func ParseBirthdayDate(raw string) (time.Time, error) {
	date, err := time.Parse(BirthdayDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid birthday date %q: %w", raw, err)
	}
	return date, nil
}

// FallsOn reports whether the birthday recurs on the given month and day, ignoring the year
func (b *Birthday) FallsOn(month time.Month, day int) bool {
	return b.Date.Month() == month && b.Date.Day() == day
}

// ISODate returns the date formatted as YYYY-MM-DD
func (b *Birthday) ISODate() string {
	return b.Date.Format(BirthdayDateLayout)
}

// DisplayDate returns the date formatted as DD/MM/YYYY
func (b *Birthday) DisplayDate() string {
	return b.Date.Format(BirthdayDisplayLayout)
}
