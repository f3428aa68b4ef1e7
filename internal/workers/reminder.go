package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studyhub/studyhub-api/internal/mailer"
	"github.com/studyhub/studyhub-api/internal/models"
	"github.com/studyhub/studyhub-api/internal/queue"
)

// TaskReminderStore is the slice of the task repository the dispatcher needs.
type TaskReminderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	MarkReminded(ctx context.Context, id uuid.UUID) error
}

// EventReminderStore is the slice of the event repository the dispatcher needs.
type EventReminderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	MarkReminded(ctx context.Context, id uuid.UUID) error
}

// UserStore resolves job owners to their email addresses.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ReminderDispatcher processes reminder jobs from the queue and delivers
// reminder emails.
type ReminderDispatcher struct {
	tasks    TaskReminderStore
	events   EventReminderStore
	users    UserStore
	sender   mailer.Sender
	jobQueue queue.JobQueue // For re-enqueueing jobs with delays
	logger   *zap.Logger
}

// NewReminderDispatcher creates a new reminder dispatcher.
func NewReminderDispatcher(
	tasks TaskReminderStore,
	events EventReminderStore,
	users UserStore,
	sender mailer.Sender,
	jobQueue queue.JobQueue,
	logger *zap.Logger,
) *ReminderDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderDispatcher{
		tasks:    tasks,
		events:   events,
		users:    users,
		sender:   sender,
		jobQueue: jobQueue,
		logger:   logger,
	}
}

// ProcessJob processes a job based on its type.
func (d *ReminderDispatcher) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job

	if job.IsExpired() {
		d.logger.Warn("reminder_job_expired",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)))
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack expired job: %w", ackErr)
		}
		return nil
	}

	if !job.ShouldProcess() {
		// Not ready yet, requeue for later
		if nackErr := msg.Nack(true); nackErr != nil {
			return fmt.Errorf("failed to requeue job: %w", nackErr)
		}
		return nil
	}

	var err error
	switch job.Type {
	case queue.JobTypeTaskReminder:
		err = d.processTaskReminder(ctx, job)
	case queue.JobTypeEventReminder:
		err = d.processEventReminder(ctx, job)
	default:
		// Unknown job type, send to DLQ
		if nackErr := msg.Nack(false); nackErr != nil {
			d.logger.Error("nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err != nil {
		return d.handleJobError(ctx, msg, job, err)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

func (d *ReminderDispatcher) processTaskReminder(ctx context.Context, job *queue.Job) error {
	if job.TaskID == nil {
		return fmt.Errorf("task_id is required for task reminder job")
	}

	task, err := d.tasks.GetByID(ctx, *job.TaskID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	if task.UserID != job.UserID {
		return fmt.Errorf("task does not belong to user")
	}

	// The task may have been edited or reminded between sweep and delivery
	if task.IsReminded || task.ReminderDate == nil {
		d.logger.Info("task_reminder_skipped", zap.String("task_id", task.ID.String()))
		return nil
	}

	user, err := d.users.GetByID(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	subject := fmt.Sprintf("Reminder: %s", task.Title)
	body := fmt.Sprintf("Your task %q is due %s.", task.Title,
		task.DueDate.Format("Mon, 2 Jan 2006 at 15:04"))
	if err := d.sender.Send(user.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send task reminder: %w", err)
	}

	if err := d.tasks.MarkReminded(ctx, task.ID); err != nil {
		return fmt.Errorf("failed to mark task reminded: %w", err)
	}

	d.logger.Info("task_reminder_sent",
		zap.String("task_id", task.ID.String()),
		zap.String("user_id", job.UserID.String()))
	return nil
}

func (d *ReminderDispatcher) processEventReminder(ctx context.Context, job *queue.Job) error {
	if job.EventID == nil {
		return fmt.Errorf("event_id is required for event reminder job")
	}

	event, err := d.events.GetByID(ctx, *job.EventID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if event.UserID != job.UserID {
		return fmt.Errorf("event does not belong to user")
	}

	if event.IsReminded || event.ReminderDate == nil {
		d.logger.Info("event_reminder_skipped", zap.String("event_id", event.ID.String()))
		return nil
	}

	user, err := d.users.GetByID(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	subject := fmt.Sprintf("Reminder: %s", event.Title)
	body := fmt.Sprintf("Your event %q starts %s.", event.Title,
		event.StartDate.Format("Mon, 2 Jan 2006 at 15:04"))
	if err := d.sender.Send(user.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send event reminder: %w", err)
	}

	if err := d.events.MarkReminded(ctx, event.ID); err != nil {
		return fmt.Errorf("failed to mark event reminded: %w", err)
	}

	d.logger.Info("event_reminder_sent",
		zap.String("event_id", event.ID.String()),
		zap.String("user_id", job.UserID.String()))
	return nil
}

// handleJobError re-enqueues failed jobs with exponential backoff, or sends
// them to the DLQ once retries are exhausted.
func (d *ReminderDispatcher) handleJobError(ctx context.Context, msg *queue.Message, job *queue.Job, err error) error {
	d.logger.Error("reminder_job_failed",
		zap.Error(err),
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.Int("retry_count", job.RetryCount))

	if !job.CanRetry() || d.jobQueue == nil {
		if nackErr := msg.Nack(false); nackErr != nil {
			d.logger.Error("nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("reminder job %s exhausted retries: %w", job.ID, err)
	}

	notBefore := time.Now().Add(retryDelay(job.RetryCount))
	delayedJob := &queue.Job{
		ID:         job.ID,
		Type:       job.Type,
		UserID:     job.UserID,
		TaskID:     job.TaskID,
		EventID:    job.EventID,
		NotBefore:  &notBefore,
		NotAfter:   job.NotAfter,
		Metadata:   job.Metadata,
		CreatedAt:  job.CreatedAt,
		RetryCount: job.RetryCount + 1,
		MaxRetries: job.MaxRetries,
	}

	if ackErr := msg.Ack(); ackErr != nil {
		d.logger.Error("ack_failed_before_reenqueue", zap.Error(ackErr))
	}

	if enqueueErr := d.jobQueue.Enqueue(ctx, delayedJob); enqueueErr != nil {
		return fmt.Errorf("failed to re-enqueue reminder job %s: %w", job.ID, enqueueErr)
	}

	d.logger.Info("reminder_job_requeued",
		zap.String("job_id", job.ID.String()),
		zap.Time("not_before", notBefore))
	return nil
}

// retryDelay returns the backoff before the next attempt: 1m, 2m, 4m, ...
// capped at 15 minutes.
func retryDelay(retryCount int) time.Duration {
	delay := time.Minute << uint(retryCount)
	if delay > 15*time.Minute {
		delay = 15 * time.Minute
	}
	return delay
}
