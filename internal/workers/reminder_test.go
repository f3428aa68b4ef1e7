package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/studyhub/studyhub-api/internal/models"
	"github.com/studyhub/studyhub-api/internal/queue"
)

// mockTaskStore is a mock implementation of TaskReminderStore
type mockTaskStore struct {
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*models.Task, error)
	markRemindedFunc func(ctx context.Context, id uuid.UUID) error
	marked           []uuid.UUID
}

func (m *mockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockTaskStore) MarkReminded(ctx context.Context, id uuid.UUID) error {
	m.marked = append(m.marked, id)
	if m.markRemindedFunc != nil {
		return m.markRemindedFunc(ctx, id)
	}
	return nil
}

// mockEventStore is a mock implementation of EventReminderStore
type mockEventStore struct {
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*models.Event, error)
	marked      []uuid.UUID
}

func (m *mockEventStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not found")
}

func (m *mockEventStore) MarkReminded(ctx context.Context, id uuid.UUID) error {
	m.marked = append(m.marked, id)
	return nil
}

// mockUserStore is a mock implementation of UserStore
type mockUserStore struct {
	user *models.User
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.user != nil {
		return m.user, nil
	}
	return nil, errors.New("not found")
}

// mockSender records sent mail
type mockSender struct {
	sendFunc func(to, subject, body string) error
	sent     []string
}

func (m *mockSender) Send(to, subject, body string) error {
	m.sent = append(m.sent, to)
	if m.sendFunc != nil {
		return m.sendFunc(to, subject, body)
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestProcessTaskReminder_SendsAndMarks(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskID := uuid.New()
	remindAt := time.Now().Add(-5 * time.Minute)

	tasks := &mockTaskStore{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Task, error) {
			return &models.Task{
				ID:           taskID,
				UserID:       userID,
				Title:        "Finish lab report",
				DueDate:      time.Now().Add(time.Hour),
				ReminderDate: timePtr(remindAt),
			}, nil
		},
	}
	users := &mockUserStore{user: &models.User{ID: userID, Email: "student@example.com"}}
	sender := &mockSender{}

	d := NewReminderDispatcher(tasks, &mockEventStore{}, users, sender, nil, nil)

	job := queue.NewTaskReminderJob(userID, taskID)
	if err := d.processTaskReminder(context.Background(), job); err != nil {
		t.Fatalf("processTaskReminder: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0] != "student@example.com" {
		t.Errorf("expected one mail to student@example.com, got %v", sender.sent)
	}
	if len(tasks.marked) != 1 || tasks.marked[0] != taskID {
		t.Errorf("expected task %s marked reminded, got %v", taskID, tasks.marked)
	}
}

func TestProcessTaskReminder_SkipsAlreadyReminded(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskID := uuid.New()

	tasks := &mockTaskStore{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Task, error) {
			return &models.Task{
				ID:           taskID,
				UserID:       userID,
				Title:        "Finish lab report",
				ReminderDate: timePtr(time.Now().Add(-time.Minute)),
				IsReminded:   true,
			}, nil
		},
	}
	sender := &mockSender{}
	d := NewReminderDispatcher(tasks, &mockEventStore{}, &mockUserStore{}, sender, nil, nil)

	job := queue.NewTaskReminderJob(userID, taskID)
	if err := d.processTaskReminder(context.Background(), job); err != nil {
		t.Fatalf("processTaskReminder: %v", err)
	}

	if len(sender.sent) != 0 {
		t.Errorf("expected no mail for already reminded task, got %v", sender.sent)
	}
	if len(tasks.marked) != 0 {
		t.Errorf("expected no mark for already reminded task, got %v", tasks.marked)
	}
}

func TestProcessTaskReminder_RejectsForeignTask(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	tasks := &mockTaskStore{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Task, error) {
			return &models.Task{ID: taskID, UserID: uuid.New()}, nil
		},
	}
	d := NewReminderDispatcher(tasks, &mockEventStore{}, &mockUserStore{}, &mockSender{}, nil, nil)

	job := queue.NewTaskReminderJob(uuid.New(), taskID)
	if err := d.processTaskReminder(context.Background(), job); err == nil {
		t.Error("expected error for task owned by another user")
	}
}

func TestProcessTaskReminder_SendFailureDoesNotMark(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskID := uuid.New()

	tasks := &mockTaskStore{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Task, error) {
			return &models.Task{
				ID:           taskID,
				UserID:       userID,
				Title:        "Finish lab report",
				ReminderDate: timePtr(time.Now().Add(-time.Minute)),
			}, nil
		},
	}
	users := &mockUserStore{user: &models.User{ID: userID, Email: "student@example.com"}}
	sender := &mockSender{sendFunc: func(to, subject, body string) error {
		return errors.New("smtp down")
	}}
	d := NewReminderDispatcher(tasks, &mockEventStore{}, users, sender, nil, nil)

	job := queue.NewTaskReminderJob(userID, taskID)
	if err := d.processTaskReminder(context.Background(), job); err == nil {
		t.Error("expected error when send fails")
	}
	if len(tasks.marked) != 0 {
		t.Errorf("task must not be marked reminded after send failure, got %v", tasks.marked)
	}
}

func TestProcessEventReminder_SendsAndMarks(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	eventID := uuid.New()

	events := &mockEventStore{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.Event, error) {
			return &models.Event{
				ID:           eventID,
				UserID:       userID,
				Title:        "Algebra study group",
				StartDate:    time.Now().Add(30 * time.Minute),
				EndDate:      time.Now().Add(90 * time.Minute),
				ReminderDate: timePtr(time.Now().Add(-time.Minute)),
			}, nil
		},
	}
	users := &mockUserStore{user: &models.User{ID: userID, Email: "student@example.com"}}
	sender := &mockSender{}
	d := NewReminderDispatcher(&mockTaskStore{}, events, users, sender, nil, nil)

	job := queue.NewEventReminderJob(userID, eventID)
	if err := d.processEventReminder(context.Background(), job); err != nil {
		t.Fatalf("processEventReminder: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Errorf("expected one mail, got %v", sender.sent)
	}
	if len(events.marked) != 1 || events.marked[0] != eventID {
		t.Errorf("expected event %s marked reminded, got %v", eventID, events.marked)
	}
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		retryCount int
		want       time.Duration
	}{
		{0, time.Minute},
		{1, 2 * time.Minute},
		{2, 4 * time.Minute},
		{3, 8 * time.Minute},
		{4, 15 * time.Minute},
		{10, 15 * time.Minute},
	}
	for _, tt := range tests {
		if got := retryDelay(tt.retryCount); got != tt.want {
			t.Errorf("retryDelay(%d) = %v, want %v", tt.retryCount, got, tt.want)
		}
	}
}
