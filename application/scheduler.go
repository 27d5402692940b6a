package application

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"birthdaybot/config"

	log "github.com/sirupsen/logrus"
)

// Scheduler fires the birthday job once per calendar day at a wall-clock time
// in the reference timezone
type Scheduler struct {
	job   BirthdayRunner
	at    config.TimeOfDay
	loc   *time.Location
	ready <-chan struct{}
	now   func() time.Time

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler. The first timer is armed once ready is
// closed; a nil ready channel means the directory is ready immediately.
func NewScheduler(job BirthdayRunner, at config.TimeOfDay, loc *time.Location, ready <-chan struct{}) *Scheduler {
	if ready == nil {
		closed := make(chan struct{})
		close(closed)
		ready = closed
	}
	return &Scheduler{
		job:   job,
		at:    at,
		loc:   loc,
		ready: ready,
		now:   time.Now,
	}
}

// NextRun returns the first instant strictly after now whose wall clock in loc is at
func NextRun(now time.Time, at config.TimeOfDay, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), at.Hour, at.Minute, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, at.Hour, at.Minute, 0, 0, loc)
	}
	return next
}

// Start begins the scheduling loop and returns a stop function
func (s *Scheduler) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	var once sync.Once

	go func() {
		log.Info("Birthday scheduler waiting for Discord to be ready")
		select {
		case <-ctx.Done():
			log.Info("Birthday scheduler shutting down before first run (context cancelled)...")
			return
		case <-stopChan:
			log.Info("Birthday scheduler shutting down before first run (stop requested)...")
			return
		case <-s.ready:
		}

		for {
			now := s.now()
			next := NextRun(now, s.at, s.loc)
			log.WithFields(log.Fields{
				"next_run": next.Format(time.RFC3339),
				"wait":     next.Sub(now).Round(time.Second).String(),
			}).Info("Next birthday check scheduled")

			timer := time.NewTimer(next.Sub(now))
			select {
			case <-ctx.Done():
				timer.Stop()
				log.Info("Birthday scheduler shutting down (context cancelled)...")
				return
			case <-stopChan:
				timer.Stop()
				log.Info("Birthday scheduler shutting down (stop requested)...")
				return
			case <-timer.C:
				s.Trigger(ctx)
			}
		}
	}()

	return func() {
		once.Do(func() { close(stopChan) })
	}
}

// Trigger runs the job for today's date in the reference timezone
func (s *Scheduler) Trigger(ctx context.Context) (*RunReport, bool) {
	return s.TriggerFor(ctx, s.now().In(s.loc))
}

// TriggerFor runs the job for the given reference date unless a run is already
// in flight, in which case it returns false without running. A panic in the job
// is recovered and the invocation counts as complete.
func (s *Scheduler) TriggerFor(ctx context.Context, today time.Time) (report *RunReport, ran bool) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Warn("Birthday check already running, skipping trigger")
		return nil, false
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()
	defer func() {
		if rec := recover(); rec != nil {
			log.WithFields(log.Fields{
				"date":  today.Format("2006-01-02"),
				"panic": fmt.Sprint(rec),
				"stack": string(debug.Stack()),
			}).Error("Birthday check panicked")
			report = nil
		}
	}()

	ran = true
	log.Infof("Running birthday check for %s", today.Format("2006-01-02"))
	report = s.job.Run(ctx, today)
	return report, ran
}
