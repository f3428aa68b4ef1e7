package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/models"
)

// TaskRepositoryInterface defines the interface for task repository operations
// This interface enables better testability by allowing mock implementations
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter, page Page) ([]*models.Task, int, error)
	Upcoming(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Task, error)
	Overdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventRepositoryInterface defines the interface for event repository operations
type EventRepositoryInterface interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, userID uuid.UUID, filter EventFilter) ([]*models.Event, error)
	Day(ctx context.Context, userID uuid.UUID, day time.Time) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// NoteRepositoryInterface defines the interface for note repository operations
type NoteRepositoryInterface interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error)
	List(ctx context.Context, userID uuid.UUID, filter NoteFilter, page Page) ([]*models.Note, int, error)
	Journal(ctx context.Context, userID uuid.UUID, filter JournalFilter, page Page) ([]*models.Note, int, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PomodoroRepositoryInterface defines the interface for pomodoro repository operations
type PomodoroRepositoryInterface interface {
	Start(ctx context.Context, pomodoro *models.Pomodoro) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pomodoro, error)
	Complete(ctx context.Context, pomodoro *models.Pomodoro) error
	Interrupt(ctx context.Context, pomodoro *models.Pomodoro) error
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Pomodoro, error)
	SessionsInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.PomodoroSession, error)
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	GetOrCreate(ctx context.Context, claims *models.TokenClaims) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface     = (*TaskRepository)(nil)
	_ EventRepositoryInterface    = (*EventRepository)(nil)
	_ NoteRepositoryInterface     = (*NoteRepository)(nil)
	_ PomodoroRepositoryInterface = (*PomodoroRepository)(nil)
	_ UserRepositoryInterface     = (*UserRepository)(nil)
)
