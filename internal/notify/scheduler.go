// Package notify schedules the daily reminder.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/robfig/cron/v3"
)

// Scheduler holds at most one recurring daily reminder.
type Scheduler interface {
	// ScheduleDaily replaces any existing reminder with one firing at at.
	ScheduleDaily(at domain.ClockTime) error
	CancelAll() error
}

// Notifier delivers one reminder.
type Notifier func(ctx context.Context) error

// NoopScheduler accepts every call and schedules nothing.
type NoopScheduler struct{}

func (NoopScheduler) ScheduleDaily(domain.ClockTime) error { return nil }
func (NoopScheduler) CancelAll() error                     { return nil }

// DefaultJobTimeout bounds a single notifier run.
const DefaultJobTimeout = 30 * time.Second

// CronScheduler implements Scheduler on robfig/cron.
type CronScheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	daily   cron.EntryID
	hasJob  bool
	at      domain.ClockTime
	notify  Notifier
	log     *slog.Logger
	timeout time.Duration
}

func NewCronScheduler(loc *time.Location, notify Notifier, log *slog.Logger) *CronScheduler {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	return &CronScheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		notify:  notify,
		log:     log.With("component", "notify"),
		timeout: DefaultJobTimeout,
	}
}

func (s *CronScheduler) ScheduleDaily(at domain.ClockTime) error {
	spec, err := buildDailySpec(at)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasJob {
		s.cron.Remove(s.daily)
		s.hasJob = false
	}
	id, err := s.cron.AddFunc(spec, s.fire)
	if err != nil {
		return fmt.Errorf("scheduling reminder: %w", err)
	}
	s.daily, s.hasJob, s.at = id, true, at
	s.log.Info("reminder scheduled", "at", at.String())
	return nil
}

func (s *CronScheduler) CancelAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasJob {
		s.cron.Remove(s.daily)
		s.hasJob = false
		s.log.Info("reminder cancelled")
	}
	return nil
}

// Every registers a periodic background job alongside the reminder.
func (s *CronScheduler) Every(interval time.Duration, job func()) error {
	if interval < time.Second {
		return errors.New("interval must be at least one second")
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", int(interval.Seconds())), job); err != nil {
		return fmt.Errorf("scheduling job: %w", err)
	}
	return nil
}

// Scheduled reports the current reminder time, if any.
func (s *CronScheduler) Scheduled() (domain.ClockTime, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.at, s.hasJob
}

// Next returns when the reminder fires after from, in the scheduler's
// location. It works whether or not the cron loop is running.
func (s *CronScheduler) Next(from time.Time) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasJob {
		return time.Time{}, false
	}
	entry := s.cron.Entry(s.daily)
	if entry.Schedule == nil {
		return time.Time{}, false
	}
	return entry.Schedule.Next(from.In(s.cron.Location())), true
}

// RunNow delivers a reminder immediately.
func (s *CronScheduler) RunNow(ctx context.Context) error {
	if s.notify == nil {
		return nil
	}
	return s.notify(ctx)
}

func (s *CronScheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs.
func (s *CronScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *CronScheduler) fire() {
	if s.notify == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.notify(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error("reminder failed", "error", err)
	}
}

func buildDailySpec(at domain.ClockTime) (string, error) {
	if at.Hour < 0 || at.Hour > 23 {
		return "", fmt.Errorf("%w: hour %d", domain.ErrInvalidTime, at.Hour)
	}
	if at.Minute < 0 || at.Minute > 59 {
		return "", fmt.Errorf("%w: minute %d", domain.ErrInvalidTime, at.Minute)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", at.Minute, at.Hour), nil
}
