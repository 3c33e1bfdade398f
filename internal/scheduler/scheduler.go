package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type OverdueReminder interface {
	SendOverdueReminders(ctx context.Context) (sent, failed int, err error)
}

// Scheduler runs the periodic jobs of the API.
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithParser(cronParser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		timeout: 10 * time.Minute,
	}
}

// AddOverdueReminders sends reminders for overdue credits on schedule. Runs
// never overlap.
func (s *Scheduler) AddOverdueReminders(schedule string, reminder OverdueReminder) error {
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(cron.FuncJob(func() {
		s.runOverdueReminders(reminder)
	}))

	if _, err := s.cron.AddJob(schedule, job); err != nil {
		return fmt.Errorf("s.cron.AddJob -> %w", err)
	}

	return nil
}

func (s *Scheduler) runOverdueReminders(reminder OverdueReminder) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	sent, failed, err := reminder.SendOverdueReminders(ctx)
	if err != nil {
		zap.L().Error("overdue reminders failed", zap.Error(err))
		return
	}

	zap.L().Info("overdue reminders sent",
		zap.Int("sent", sent),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
