package digest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Simi445/DMS-K8S/internal/notify"
	"github.com/Simi445/DMS-K8S/internal/store"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a 5-field cron expression.
func ValidateSchedule(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("digest: schedule %q: %w", expr, err)
	}
	return nil
}

// nextCronDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Returns 0 on parse error.
func nextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

// SchedulerOpts holds parameters for the digest loop.
type SchedulerOpts struct {
	Store     *store.Store
	Notifiers []notify.Notifier
	Schedule  string // 5-field cron expression
}

// Scheduler fires a digest on its cron schedule.
type Scheduler struct {
	store     *store.Store
	notifiers []notify.Notifier
	schedule  string
	lastRun   time.Time
}

// NewScheduler validates the schedule and builds the loop.
func NewScheduler(opts SchedulerOpts) (*Scheduler, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("digest: store is required")
	}
	if err := ValidateSchedule(opts.Schedule); err != nil {
		return nil, err
	}
	return &Scheduler{
		store:     opts.Store,
		notifiers: opts.Notifiers,
		schedule:  opts.Schedule,
		lastRun:   time.Now().Add(-24 * time.Hour),
	}, nil
}

// Run blocks until ctx is cancelled, firing a digest at each scheduled time.
// Each digest covers the period since the previous fire.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		wait := nextCronDuration(s.schedule)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if err := s.RunOnce(ctx); err != nil {
			log.Printf("digest: %v", err)
		}
	}
}

// RunOnce builds and dispatches one digest covering the period since the
// last run. A quiet period dispatches nothing.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := time.Now()
	report, err := Build(s.store, s.lastRun, now)
	if err != nil {
		return err
	}
	s.lastRun = now
	if report == nil {
		log.Printf("digest: no activity, skipping")
		return nil
	}
	notify.Dispatch(ctx, s.notifiers, Format(report))
	return nil
}
