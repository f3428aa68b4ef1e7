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

const pomodoroColumns = "id, user_id, start_time, end_time, duration, break_duration, status, task_id, created_at"

// PomodoroRepository handles pomodoro and daily-aggregate database
// operations. The aggregate row for a day is maintained inside the same
// transaction as the pomodoro write, using increment-on-conflict upserts, so
// the counters cannot drift from the underlying rows under concurrent
// requests or partial failure.
type PomodoroRepository struct {
	db *DB
}

// NewPomodoroRepository creates a new pomodoro repository
func NewPomodoroRepository(db *DB) *PomodoroRepository {
	return &PomodoroRepository{db: db}
}

func scanPomodoro(row interface{ Scan(...any) error }) (*models.Pomodoro, error) {
	p := &models.Pomodoro{}
	var endTime sql.NullTime
	var taskID uuid.NullUUID
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.StartTime,
		&endTime,
		&p.Duration,
		&p.BreakDuration,
		&p.Status,
		&taskID,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		p.EndTime = &endTime.Time
	}
	if taskID.Valid {
		p.TaskID = &taskID.UUID
	}
	return p, nil
}

// Start inserts a running pomodoro and increments today's session total in
// one transaction, creating the aggregate row if this is the first start of
// the day.
func (r *PomodoroRepository) Start(ctx context.Context, p *models.Pomodoro) error {
	day := models.SessionDay(p.StartTime)

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO pomodoros (id, user_id, start_time, duration, break_duration, status, task_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, p.ID, p.UserID, p.StartTime, p.Duration, p.BreakDuration, p.Status, p.TaskID, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert pomodoro: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO pomodoro_sessions (id, user_id, date, total_sessions, completed_sessions, total_focus_time)
			VALUES ($1, $2, $3, 1, 0, 0)
			ON CONFLICT (user_id, date) DO UPDATE SET
				total_sessions = pomodoro_sessions.total_sessions + 1
		`, uuid.New(), p.UserID, day)
		if err != nil {
			return fmt.Errorf("failed to upsert daily session: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to start pomodoro: %w", err)
	}

	return nil
}

// GetByID retrieves a pomodoro by ID
func (r *PomodoroRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pomodoro, error) {
	query := `SELECT ` + pomodoroColumns + ` FROM pomodoros WHERE id = $1`

	p, err := scanPomodoro(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pomodoro %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pomodoro: %w", err)
	}

	return p, nil
}

// Complete transitions a running pomodoro to completed and credits today's
// aggregate with the completion and its focus minutes, all in one
// transaction. Returns ErrInvalidState when the pomodoro already reached a
// terminal state (the update is conditional on status, so two racing
// completions cannot double-count).
func (r *PomodoroRepository) Complete(ctx context.Context, p *models.Pomodoro) error {
	now := time.Now()
	day := models.SessionDay(now)

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE pomodoros SET end_time = $2, status = $3
			WHERE id = $1 AND status = $4
		`, p.ID, now, models.PomodoroStatusCompleted, models.PomodoroStatusRunning)
		if err != nil {
			return fmt.Errorf("failed to complete pomodoro: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("pomodoro %s already finished: %w", p.ID, ErrInvalidState)
		}

		// The start call always creates the day row, but complete can land
		// on a later day than start; the upsert covers that case too.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO pomodoro_sessions (id, user_id, date, total_sessions, completed_sessions, total_focus_time)
			VALUES ($1, $2, $3, 1, 1, $4)
			ON CONFLICT (user_id, date) DO UPDATE SET
				completed_sessions = pomodoro_sessions.completed_sessions + 1,
				total_focus_time = pomodoro_sessions.total_focus_time + $4
		`, uuid.New(), p.UserID, day, p.Duration)
		if err != nil {
			return fmt.Errorf("failed to upsert daily session: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	p.EndTime = &now
	p.Status = models.PomodoroStatusCompleted
	return nil
}

// Interrupt transitions a running pomodoro to interrupted. The aggregate is
// untouched: the session was counted at start, and interrupted runs earn no
// completion credit or focus time.
func (r *PomodoroRepository) Interrupt(ctx context.Context, p *models.Pomodoro) error {
	now := time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE pomodoros SET end_time = $2, status = $3
		WHERE id = $1 AND status = $4
	`, p.ID, now, models.PomodoroStatusInterrupted, models.PomodoroStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to interrupt pomodoro: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("pomodoro %s already finished: %w", p.ID, ErrInvalidState)
	}

	p.EndTime = &now
	p.Status = models.PomodoroStatusInterrupted
	return nil
}

// Recent returns the user's most recent pomodoros by start time with the
// related task's title projected in.
func (r *PomodoroRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Pomodoro, error) {
	query := `
		SELECT p.id, p.user_id, p.start_time, p.end_time, p.duration, p.break_duration, p.status, p.task_id, p.created_at, t.title
		FROM pomodoros p
		LEFT JOIN tasks t ON t.id = p.task_id
		WHERE p.user_id = $1
		ORDER BY p.start_time DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent pomodoros: %w", err)
	}
	defer rows.Close()

	var pomodoros []*models.Pomodoro
	for rows.Next() {
		p := &models.Pomodoro{}
		var endTime sql.NullTime
		var taskID uuid.NullUUID
		var taskTitle sql.NullString
		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.StartTime,
			&endTime,
			&p.Duration,
			&p.BreakDuration,
			&p.Status,
			&taskID,
			&p.CreatedAt,
			&taskTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pomodoro: %w", err)
		}
		if endTime.Valid {
			p.EndTime = &endTime.Time
		}
		if taskID.Valid {
			p.TaskID = &taskID.UUID
		}
		if taskTitle.Valid {
			p.TaskTitle = &taskTitle.String
		}
		pomodoros = append(pomodoros, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pomodoros: %w", err)
	}

	return pomodoros, nil
}

// SessionsInRange returns the daily aggregate rows for the user whose day
// falls in [start, end], oldest first.
func (r *PomodoroRepository) SessionsInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.PomodoroSession, error) {
	query := `
		SELECT id, user_id, date, total_sessions, completed_sessions, total_focus_time
		FROM pomodoro_sessions
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query pomodoro sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.PomodoroSession
	for rows.Next() {
		s := &models.PomodoroSession{}
		err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Date,
			&s.TotalSessions,
			&s.CompletedSessions,
			&s.TotalFocusTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pomodoro session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pomodoro sessions: %w", err)
	}

	return sessions, nil
}
