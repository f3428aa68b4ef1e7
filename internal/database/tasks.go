package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/models"
)

// taskColumns is the SELECT list shared by all task queries
const taskColumns = "id, user_id, title, description, priority, status, due_date, category, reminder_date, is_reminded, created_at, updated_at"

// taskOrder sorts soonest-due first, with higher priority breaking ties
const taskOrder = ` ORDER BY due_date ASC, CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC`

// TaskRepository handles task database operations
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	task := &models.Task{}
	var reminderDate sql.NullTime
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&task.DueDate,
		&task.Category,
		&reminderDate,
		&task.IsReminded,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reminderDate.Valid {
		task.ReminderDate = &reminderDate.Time
	}
	return task, nil
}

// Create persists a new task
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, title, description, priority, status, due_date, category, reminder_date, is_reminded, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.DueDate,
		task.Category,
		task.ReminderDate,
		task.IsReminded,
		now,
		now,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// List retrieves a filtered, paginated page of the user's tasks plus the
// total number of matching rows.
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID, filter TaskFilter, page Page) ([]*models.Task, int, error) {
	page = page.Clamp()
	b := buildTaskConds(userID, filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks` + b.where()
	if err := r.db.QueryRowContext(ctx, countQuery, b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + b.where() + taskOrder +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(b.args)+1, len(b.args)+2)
	args := append(b.args, page.Limit, page.Offset())

	tasks, err := r.queryTasks(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Upcoming returns tasks due within the next seven days that are still open
func (r *TaskRepository) Upcoming(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND due_date >= $2 AND due_date <= $3 AND status IN ($4, $5)` + taskOrder

	return r.queryTasks(ctx, query, userID, now, now.AddDate(0, 0, 7),
		models.TaskStatusPending, models.TaskStatusInProgress)
}

// Overdue returns tasks past their due date that were never completed
func (r *TaskRepository) Overdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE user_id = $1 AND due_date < $2 AND status <> $3` + taskOrder

	return r.queryTasks(ctx, query, userID, now, models.TaskStatusCompleted)
}

// Update persists changes to an existing task and refreshes updated_at
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, priority = $4, status = $5, due_date = $6, category = $7, reminder_date = $8, is_reminded = $9, updated_at = $10
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.DueDate,
		task.Category,
		task.ReminderDate,
		task.IsReminded,
		time.Now(),
	).Scan(&task.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("task %s: %w", task.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// Delete removes a task by ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}

	return nil
}

// DueReminders returns tasks whose reminder time has passed and that have not
// been reminded yet. Used by the reminder sweeper.
func (r *TaskRepository) DueReminders(ctx context.Context, now time.Time, limit int) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE reminder_date IS NOT NULL AND reminder_date <= $1 AND NOT is_reminded
		ORDER BY reminder_date ASC LIMIT $2`

	return r.queryTasks(ctx, query, now, limit)
}

// MarkReminded records that the reminder for a task was delivered
func (r *TaskRepository) MarkReminded(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET is_reminded = TRUE, updated_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark task reminded: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}
