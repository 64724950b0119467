package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule runs daily maintenance shortly after midnight.
const DefaultSchedule = "5 0 * * *"

// Scheduler runs a Job's RunDaily on startup and then on a cron schedule.
type Scheduler struct {
	mu     sync.Mutex
	runMu  sync.Mutex
	job    *Job
	logger *slog.Logger
	cron   *cron.Cron
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler validates spec as a standard five-field cron expression.
func NewScheduler(job *Job, spec string, loc *time.Location, logger *slog.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		job:    job,
		logger: logger,
		cron:   cron.New(cron.WithLocation(loc)),
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the daily job once in the background, then hands over to the
// cron schedule. It is the equivalent of the app coming to the foreground.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.cron.Start()

	go func() {
		defer close(s.done)
		s.run()
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
}

// Stop halts the schedule and waits for any running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Next returns the next scheduled run time.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) run() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	ran, err := s.job.RunDaily()
	if err != nil {
		s.logger.Error("daily maintenance failed", "error", err)
		return
	}
	if ran {
		s.logger.Debug("daily maintenance ran")
	}
}
