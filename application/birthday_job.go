package application

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"birthdaybot/domain/entities"
	"birthdaybot/domain/interfaces"
	"birthdaybot/events"

	log "github.com/sirupsen/logrus"
)

// BirthdayJob announces today's birthdays and revokes yesterday's role
type BirthdayJob struct {
	birthdayRepo      interfaces.BirthdayRepository
	guildSettingsRepo interfaces.GuildSettingsRepository
	directory         GuildDirectory
	eventPublisher    events.Publisher
}

// NewBirthdayJob creates a new birthday job
func NewBirthdayJob(
	birthdayRepo interfaces.BirthdayRepository,
	guildSettingsRepo interfaces.GuildSettingsRepository,
	directory GuildDirectory,
	eventPublisher events.Publisher,
) *BirthdayJob {
	return &BirthdayJob{
		birthdayRepo:      birthdayRepo,
		guildSettingsRepo: guildSettingsRepo,
		directory:         directory,
		eventPublisher:    eventPublisher,
	}
}

// run holds the state shared by both phases of one invocation
type run struct {
	report   *RunReport
	settings map[int64]settingsResult
}

type settingsResult struct {
	settings *entities.GuildSettings
	err      error
}

// Run evaluates the reference date. today must already be expressed in the
// reference timezone; only its calendar date is used.
func (j *BirthdayJob) Run(ctx context.Context, today time.Time) *RunReport {
	start := time.Now()
	r := &run{
		report:   newRunReport(today),
		settings: make(map[int64]settingsResult),
	}

	j.celebrate(ctx, r, today)
	j.revoke(ctx, r, today.AddDate(0, 0, -1))

	r.report.Duration = time.Since(start)
	r.report.logSummary()
	return r.report
}

// settingsFor reads a guild's settings at most once per invocation
func (j *BirthdayJob) settingsFor(ctx context.Context, r *run, guildID int64) (*entities.GuildSettings, error) {
	if cached, ok := r.settings[guildID]; ok {
		return cached.settings, cached.err
	}
	settings, err := j.guildSettingsRepo.GetGuildSettings(ctx, guildID)
	r.settings[guildID] = settingsResult{settings: settings, err: err}
	return settings, err
}

func (j *BirthdayJob) celebrate(ctx context.Context, r *run, today time.Time) {
	phase := &r.report.Celebrate

	matches, err := j.birthdayRepo.GetByDate(ctx, today.Month(), today.Day())
	if err != nil {
		phase.add(Outcome{Kind: OutcomeUnexpected, Reason: "failed to load today's birthdays", Err: err})
		return
	}

	set := NewBirthdaySet(matches)
	phase.Matches = set.Len()
	if set.Len() == 0 {
		log.Infof("No birthdays on %s", today.Format(entities.BirthdayDateLayout))
		return
	}

	for _, guildID := range set.Guilds() {
		if ctx.Err() != nil {
			log.Warn("Birthday check cancelled during celebration phase")
			return
		}
		phase.add(guarded(guildID, func() Outcome {
			return j.celebrateGuild(ctx, r, guildID, set.Members(guildID), today)
		}))
	}
}

func (j *BirthdayJob) celebrateGuild(ctx context.Context, r *run, guildID int64, memberIDs []int64, today time.Time) Outcome {
	settings, err := j.settingsFor(ctx, r, guildID)
	if err != nil {
		return Outcome{Kind: OutcomeUnexpected, GuildID: guildID, Reason: "failed to load guild settings", Err: err}
	}
	if !settings.HasChannel() {
		return skipped(guildID, "no celebration channel configured")
	}

	guild, err := j.directory.ResolveGuild(ctx, guildID)
	if err != nil {
		return classify(guildID, "guild unavailable", err)
	}
	channel, err := j.directory.ResolveChannel(ctx, guild, *settings.ChannelID)
	if err != nil {
		return classify(guildID, "celebration channel unavailable", err)
	}

	members := make([]*Member, 0, len(memberIDs))
	mentions := make([]string, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		member, err := j.directory.ResolveMember(ctx, guild, memberID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				log.WithError(err).Warnf("Failed to resolve member %d in guild %d", memberID, guildID)
			}
			continue
		}
		members = append(members, member)
		mentions = append(mentions, member.Mention)
	}
	if len(members) == 0 {
		return skipped(guildID, "no birthday member is still in the guild")
	}

	if err := j.directory.SendMessage(ctx, channel, settings.RenderMessage(mentions)); err != nil {
		return classify(guildID, "failed to send birthday announcement", err)
	}
	j.publish(ctx, events.BirthdayCelebratedEvent{
		GuildID:   guildID,
		ChannelID: channel.ID,
		MemberIDs: memberIDsOf(members),
		Date:      today.Format(entities.BirthdayDateLayout),
	})

	if !settings.HasRole() {
		return completed(guildID, "birthday announcement sent")
	}

	role, err := j.directory.ResolveRole(ctx, guild, *settings.RoleID)
	if err != nil {
		log.WithError(err).Warnf("Birthday role %d unavailable in guild %d", *settings.RoleID, guildID)
		return completed(guildID, "birthday announcement sent, role unavailable")
	}

	for _, member := range members {
		if member.HasRole(role.ID) {
			continue
		}
		if err := j.directory.GrantRole(ctx, member, role); err != nil {
			o := classify(guildID, fmt.Sprintf("failed to grant birthday role to member %d", member.ID), err)
			o.MemberID = member.ID
			return o
		}
	}

	return completed(guildID, "birthday announcement sent and role granted")
}

func (j *BirthdayJob) revoke(ctx context.Context, r *run, yesterday time.Time) {
	phase := &r.report.Revoke

	matches, err := j.birthdayRepo.GetByDate(ctx, yesterday.Month(), yesterday.Day())
	if err != nil {
		phase.add(Outcome{Kind: OutcomeUnexpected, Reason: "failed to load yesterday's birthdays", Err: err})
		return
	}

	phase.Matches = len(matches)
	if len(matches) == 0 {
		log.Debugf("No birthday roles to revoke for %s", yesterday.Format(entities.BirthdayDateLayout))
		return
	}

	for _, match := range matches {
		if ctx.Err() != nil {
			log.Warn("Birthday check cancelled during revocation phase")
			return
		}
		o := guarded(match.GuildID, func() Outcome {
			return j.revokeRole(ctx, r, match)
		})
		o.MemberID = match.MemberID
		phase.add(o)
	}
}

func (j *BirthdayJob) revokeRole(ctx context.Context, r *run, match entities.BirthdayMatch) Outcome {
	guildID := match.GuildID

	settings, err := j.settingsFor(ctx, r, guildID)
	if err != nil {
		return Outcome{Kind: OutcomeUnexpected, GuildID: guildID, Reason: "failed to load guild settings", Err: err}
	}
	if !settings.HasRole() {
		return skipped(guildID, "no birthday role configured")
	}

	guild, err := j.directory.ResolveGuild(ctx, guildID)
	if err != nil {
		return classify(guildID, "guild unavailable", err)
	}
	member, err := j.directory.ResolveMember(ctx, guild, match.MemberID)
	if err != nil {
		return classify(guildID, "member left the guild", err)
	}
	role, err := j.directory.ResolveRole(ctx, guild, *settings.RoleID)
	if err != nil {
		return classify(guildID, "birthday role unavailable", err)
	}

	if !member.HasRole(role.ID) {
		return completed(guildID, "role not held")
	}

	if err := j.directory.RevokeRole(ctx, member, role); err != nil {
		return classify(guildID, "failed to revoke birthday role", err)
	}
	j.publish(ctx, events.BirthdayRoleRevokedEvent{
		GuildID:  guildID,
		MemberID: member.ID,
		RoleID:   role.ID,
	})

	return completed(guildID, "birthday role revoked")
}

// guarded runs one guild or record step; a panic becomes an Unexpected outcome
// so the remaining guilds and the next phase still run
func guarded(guildID int64, step func() Outcome) (o Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			log.WithFields(log.Fields{
				"guild_id": guildID,
				"panic":    fmt.Sprint(rec),
				"stack":    string(debug.Stack()),
			}).Error("Birthday step panicked")
			o = Outcome{
				Kind:    OutcomeUnexpected,
				GuildID: guildID,
				Reason:  "panic during processing",
				Err:     fmt.Errorf("panic: %v", rec),
			}
		}
	}()
	return step()
}

func (j *BirthdayJob) publish(ctx context.Context, event events.Event) {
	if j.eventPublisher == nil {
		return
	}
	if err := j.eventPublisher.Publish(ctx, event); err != nil {
		log.WithError(err).Warnf("Failed to publish %s event", event.Type())
	}
}

func memberIDsOf(members []*Member) []int64 {
	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}
