package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
)

// Schedule holds the cron specs of each job, in the scheduler's location.
type Schedule struct {
	Morning string
	Lunch   string
	Evening string
	Weekly  string
	Monthly string
	Alerts  string
	Prune   string
}

// DefaultSchedule mirrors the original timetable: reminders at 08:00, 12:00
// and 20:00, the weekly report Monday 09:00, the monthly check daily 09:00
// and budget alerts every three hours.
func DefaultSchedule() Schedule {
	return Schedule{
		Morning: "0 8 * * *",
		Lunch:   "0 12 * * *",
		Evening: "0 20 * * *",
		Weekly:  "0 9 * * 1",
		Monthly: "0 9 * * *",
		Alerts:  "0 */3 * * *",
		Prune:   "30 3 * * *",
	}
}

func (s Schedule) entries() []struct{ spec, job string } {
	return []struct{ spec, job string }{
		{s.Morning, JobMorning},
		{s.Lunch, JobLunch},
		{s.Evening, JobEvening},
		{s.Weekly, JobWeekly},
		{s.Monthly, JobMonthlyCheck},
		{s.Alerts, JobAlerts},
		{s.Prune, JobPrune},
	}
}

// Scheduler runs the notification jobs on cron.
type Scheduler struct {
	svc      *Service
	schedule Schedule

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	entries map[string]cron.EntryID
}

func NewScheduler(svc *Service, schedule Schedule) *Scheduler {
	return &Scheduler{svc: svc, schedule: schedule}
}

// Start registers every job with a non-empty spec and starts the cron loop.
// Jobs run with ctx, so cancelling it aborts in-flight user loops.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("notification scheduler is already running")
	}

	c := cron.New(cron.WithLocation(s.svc.loc), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	entries := make(map[string]cron.EntryID)
	for _, e := range s.schedule.entries() {
		if e.spec == "" {
			continue
		}
		job := e.job
		id, err := c.AddFunc(e.spec, func() {
			s.svc.Run(ctx, job)
		})
		if err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job, e.spec, err)
		}
		entries[job] = id
	}

	c.Start()
	s.cron = c
	s.entries = entries
	s.running = true

	s.svc.logger.InfoContext(ctx, "Notification scheduler started",
		log.FieldOperation, log.OpSchedule,
		"jobs", len(entries),
		"location", s.svc.loc.String())
	return nil
}

// Stop stops scheduling and waits for running jobs or ctx, whichever is first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	c := s.cron
	s.running = false
	s.mu.Unlock()

	select {
	case <-c.Stop().Done():
		s.svc.logger.InfoContext(ctx, "Notification scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.svc.logger.WarnContext(ctx, "Notification scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Entries returns the cron entry of each scheduled job.
func (s *Scheduler) Entries() map[string]cron.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]cron.Entry, len(s.entries))
	if s.cron == nil {
		return out
	}
	for job, id := range s.entries {
		out[job] = s.cron.Entry(id)
	}
	return out
}
