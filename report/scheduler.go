package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type SchedulerConfig struct {
	// At is the local run time as HH:MM.
	At       string
	Location *time.Location
	Run      func(ctx context.Context)
	Logger   *slog.Logger
	Now      func() time.Time
	// After replaces time.After in tests.
	After func(d time.Duration) <-chan time.Time
}

// Scheduler calls Run once per day at a fixed local time.
type Scheduler struct {
	hour   int
	minute int
	loc    *time.Location
	run    func(ctx context.Context)
	logger *slog.Logger
	now    func() time.Time
	after  func(d time.Duration) <-chan time.Time
}

func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Run == nil {
		return nil, fmt.Errorf("report: scheduler requires a run function")
	}
	hour, minute, err := ParseClock(cfg.At)
	if err != nil {
		return nil, err
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	after := cfg.After
	if after == nil {
		after = time.After
	}
	return &Scheduler{
		hour:   hour,
		minute: minute,
		loc:    loc,
		run:    cfg.Run,
		logger: logger,
		now:    now,
		after:  after,
	}, nil
}

// ParseClock parses an HH:MM time of day.
func ParseClock(at string) (int, int, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return 0, 0, fmt.Errorf("report: invalid time of day %q: %w", at, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Next returns the first run time strictly after now.
func (s *Scheduler) Next(now time.Time) time.Time {
	local := now.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, s.hour, s.minute, 0, 0, s.loc)
	}
	return next
}

// Start blocks running the job every day until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	for {
		next := s.Next(s.now())
		s.logger.Info("next daily report scheduled", "at", next.Format(time.RFC3339))
		select {
		case <-ctx.Done():
			return
		case <-s.after(next.Sub(s.now())):
			if ctx.Err() != nil {
				return
			}
			s.run(ctx)
		}
	}
}
