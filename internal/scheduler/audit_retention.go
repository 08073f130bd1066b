package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/hymnal/internal/tasks"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// NextRunTime calculates when a schedule next fires after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// TaskEnqueuer is the part of the task client the scheduler needs.
type TaskEnqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// AuditRetentionScheduler periodically removes expired audit logs. With a
// task queue the job is enqueued so it gets retries; without one it runs
// inline against the cleaner.
type AuditRetentionScheduler struct {
	schedule      string
	retentionDays int
	queue         TaskEnqueuer
	cleaner       tasks.AuditLogCleaner

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewAuditRetentionScheduler creates a scheduler. queue may be nil.
func NewAuditRetentionScheduler(schedule string, retentionDays int, queue TaskEnqueuer, cleaner tasks.AuditLogCleaner) *AuditRetentionScheduler {
	return &AuditRetentionScheduler{
		schedule:      schedule,
		retentionDays: retentionDays,
		queue:         queue,
		cleaner:       cleaner,
		cron:          cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler when a retention period is configured.
func (s *AuditRetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.retentionDays <= 0 {
		log.Info("Audit retention scheduler: disabled, audit logs are kept forever")
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.run)
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.schedule, time.Now())
	log.Info("Audit retention scheduler: started",
		"schedule", s.schedule,
		"retention_days", s.retentionDays,
		"next_run", nextRun)

	// Monitor for context cancellation
	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *AuditRetentionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	log.Info("Audit retention scheduler: stopped")
}

// RunNow triggers a cleanup immediately, outside the schedule.
func (s *AuditRetentionScheduler) RunNow() {
	s.run()
}

// IsRunning returns whether the scheduler is active
func (s *AuditRetentionScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next cleanup will occur
func (s *AuditRetentionScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *AuditRetentionScheduler) run() {
	task := tasks.CleanupAuditLogsTask{RetentionDays: s.retentionDays}

	if s.queue != nil {
		ids, err := s.queue.Add(task).Save()
		if err != nil {
			log.Error("Audit retention: failed to enqueue cleanup", "err", err)
			return
		}
		log.Info("Audit retention: cleanup enqueued", "task_id", ids[0])
		return
	}

	if err := tasks.CleanupAuditLogsProcessor(s.cleaner)(context.Background(), task); err != nil {
		log.Error("Audit retention: cleanup failed", "err", err)
	}
}
