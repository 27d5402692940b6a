package application

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// OutcomeKind classifies the result of one guild (celebration) or one record (revocation)
type OutcomeKind int

const (
	OutcomeCompleted OutcomeKind = iota
	OutcomeSkipped
	OutcomePermissionDenied
	OutcomeUnexpected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomePermissionDenied:
		return "permission_denied"
	case OutcomeUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of a single unit of work within a run
type Outcome struct {
	Kind     OutcomeKind
	GuildID  int64
	MemberID int64 // only set for revocations
	Reason   string
	Err      error
}

func completed(guildID int64, reason string) Outcome {
	return Outcome{Kind: OutcomeCompleted, GuildID: guildID, Reason: reason}
}

func skipped(guildID int64, reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, GuildID: guildID, Reason: reason}
}

// classify maps an error from the store or the directory to an outcome kind
func classify(guildID int64, reason string, err error) Outcome {
	switch {
	case errors.Is(err, ErrNotFound):
		return Outcome{Kind: OutcomeSkipped, GuildID: guildID, Reason: reason, Err: err}
	case errors.Is(err, ErrPermissionDenied):
		return Outcome{Kind: OutcomePermissionDenied, GuildID: guildID, Reason: reason, Err: err}
	default:
		return Outcome{Kind: OutcomeUnexpected, GuildID: guildID, Reason: reason, Err: err}
	}
}

// PhaseReport aggregates the outcomes of one phase
type PhaseReport struct {
	Name     string
	Matches  int
	Outcomes []Outcome
}

func (p *PhaseReport) add(o Outcome) {
	p.Outcomes = append(p.Outcomes, o)

	entry := log.WithFields(log.Fields{
		"phase":    p.Name,
		"guild_id": o.GuildID,
		"outcome":  o.Kind.String(),
	})
	if o.MemberID != 0 {
		entry = entry.WithField("member_id", o.MemberID)
	}
	if o.Err != nil {
		entry = entry.WithError(o.Err)
	}

	switch o.Kind {
	case OutcomeUnexpected:
		entry.Error(o.Reason)
	case OutcomePermissionDenied:
		entry.Warn(o.Reason)
	case OutcomeSkipped:
		entry.Debug(o.Reason)
	default:
		entry.Info(o.Reason)
	}
}

// Count returns how many outcomes of the given kind the phase produced
func (p *PhaseReport) Count(kind OutcomeKind) int {
	n := 0
	for _, o := range p.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// RunReport is the result of one evaluation of a reference date
type RunReport struct {
	Date      time.Time
	Celebrate PhaseReport
	Revoke    PhaseReport
	Duration  time.Duration
}

func newRunReport(today time.Time) *RunReport {
	return &RunReport{
		Date:      today,
		Celebrate: PhaseReport{Name: "celebrate"},
		Revoke:    PhaseReport{Name: "revoke"},
	}
}

// Failures counts permission denials and unexpected errors across both phases
func (r *RunReport) Failures() int {
	return r.Celebrate.Count(OutcomePermissionDenied) + r.Celebrate.Count(OutcomeUnexpected) +
		r.Revoke.Count(OutcomePermissionDenied) + r.Revoke.Count(OutcomeUnexpected)
}

func (r *RunReport) logSummary() {
	log.WithFields(log.Fields{
		"date":                r.Date.Format("2006-01-02"),
		"birthdays_today":     r.Celebrate.Matches,
		"guilds_celebrated":   r.Celebrate.Count(OutcomeCompleted),
		"guilds_skipped":      r.Celebrate.Count(OutcomeSkipped),
		"celebrate_denied":    r.Celebrate.Count(OutcomePermissionDenied),
		"celebrate_failed":    r.Celebrate.Count(OutcomeUnexpected),
		"birthdays_yesterday": r.Revoke.Matches,
		"roles_revoked":       r.Revoke.Count(OutcomeCompleted),
		"revocations_skipped": r.Revoke.Count(OutcomeSkipped),
		"revoke_denied":       r.Revoke.Count(OutcomePermissionDenied),
		"revoke_failed":       r.Revoke.Count(OutcomeUnexpected),
		"processing_time":     r.Duration.String(),
	}).Info("Completed birthday check")
}
