package application

import "birthdaybot/domain/entities"

// BirthdaySet groups matches by guild, keeping the order in which guilds and
// members were first seen and dropping duplicate pairs.
type BirthdaySet struct {
	guilds  []int64
	members map[int64][]int64
	seen    map[entities.BirthdayMatch]struct{}
}

// NewBirthdaySet builds a set from store matches
func NewBirthdaySet(matches []entities.BirthdayMatch) *BirthdaySet {
	s := &BirthdaySet{
		members: make(map[int64][]int64),
		seen:    make(map[entities.BirthdayMatch]struct{}, len(matches)),
	}
	for _, m := range matches {
		s.Add(m)
	}
	return s
}

// Add inserts a match, ignoring pairs already present
func (s *BirthdaySet) Add(m entities.BirthdayMatch) {
	if _, ok := s.seen[m]; ok {
		return
	}
	s.seen[m] = struct{}{}

	if _, ok := s.members[m.GuildID]; !ok {
		s.guilds = append(s.guilds, m.GuildID)
	}
	s.members[m.GuildID] = append(s.members[m.GuildID], m.MemberID)
}

// Guilds returns guild ids in first-seen order
func (s *BirthdaySet) Guilds() []int64 {
	return s.guilds
}

// Members returns the member ids of a guild
func (s *BirthdaySet) Members(guildID int64) []int64 {
	return s.members[guildID]
}

// Len is the number of distinct (guild, member) pairs
func (s *BirthdaySet) Len() int {
	return len(s.seen)
}
