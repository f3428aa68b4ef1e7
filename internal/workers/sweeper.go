package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/studyhub/studyhub-api/internal/models"
	"github.com/studyhub/studyhub-api/internal/queue"
)

const (
	// sweepSchedule runs the reminder sweep once a minute.
	sweepSchedule = "* * * * *"
	// sweepBatchSize bounds how many due reminders one sweep enqueues per
	// resource.
	sweepBatchSize = 200
	// reminderTTL is how long an enqueued reminder stays deliverable before
	// it is dropped as stale.
	reminderTTL = 24 * time.Hour
)

// DueTaskSource lists tasks with pending reminders.
type DueTaskSource interface {
	DueReminders(ctx context.Context, now time.Time, limit int) ([]*models.Task, error)
}

// DueEventSource lists events with pending reminders.
type DueEventSource interface {
	DueReminders(ctx context.Context, now time.Time, limit int) ([]*models.Event, error)
}

// ReminderSweeper periodically scans for due reminders and enqueues delivery
// jobs. Delivery and the is_reminded flip happen in the dispatcher, so a
// sweep that races a slow delivery may enqueue a duplicate; the dispatcher
// skips already-reminded items.
type ReminderSweeper struct {
	tasks    DueTaskSource
	events   DueEventSource
	jobQueue queue.JobQueue
	logger   *zap.Logger
	cron     *cron.Cron
}

// NewReminderSweeper creates a new reminder sweeper.
func NewReminderSweeper(tasks DueTaskSource, events DueEventSource, jobQueue queue.JobQueue, logger *zap.Logger) *ReminderSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderSweeper{
		tasks:    tasks,
		events:   events,
		jobQueue: jobQueue,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start schedules the sweep loop and blocks until ctx is cancelled.
func (s *ReminderSweeper) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(sweepSchedule, func() {
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("reminder_sweep_error", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}

	s.cron.Start()
	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}

// Sweep enqueues one delivery job per due task and event reminder.
func (s *ReminderSweeper) Sweep(ctx context.Context) error {
	now := time.Now()

	tasks, err := s.tasks.DueReminders(ctx, now, sweepBatchSize)
	if err != nil {
		return fmt.Errorf("failed to list due task reminders: %w", err)
	}
	enqueued := 0
	for _, task := range tasks {
		job := queue.NewTaskReminderJob(task.UserID, task.ID)
		notAfter := now.Add(reminderTTL)
		job.NotAfter = &notAfter
		if err := s.jobQueue.Enqueue(ctx, job); err != nil {
			s.logger.Error("task_reminder_enqueue_failed",
				zap.Error(err),
				zap.String("task_id", task.ID.String()))
			continue
		}
		enqueued++
	}

	events, err := s.events.DueReminders(ctx, now, sweepBatchSize)
	if err != nil {
		return fmt.Errorf("failed to list due event reminders: %w", err)
	}
	for _, event := range events {
		job := queue.NewEventReminderJob(event.UserID, event.ID)
		notAfter := now.Add(reminderTTL)
		job.NotAfter = &notAfter
		if err := s.jobQueue.Enqueue(ctx, job); err != nil {
			s.logger.Error("event_reminder_enqueue_failed",
				zap.Error(err),
				zap.String("event_id", event.ID.String()))
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		s.logger.Info("reminder_sweep_enqueued", zap.Int("count", enqueued))
	}
	return nil
}
