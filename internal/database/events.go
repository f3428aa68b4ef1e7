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

const eventColumns = "id, user_id, title, description, start_date, end_date, all_day, location, event_type, color, recurrence, reminder_date, is_reminded, related_task, created_at, updated_at"

// EventRepository handles calendar event database operations
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	event := &models.Event{}
	var reminderDate sql.NullTime
	var relatedTask uuid.NullUUID
	err := row.Scan(
		&event.ID,
		&event.UserID,
		&event.Title,
		&event.Description,
		&event.StartDate,
		&event.EndDate,
		&event.AllDay,
		&event.Location,
		&event.EventType,
		&event.Color,
		&event.Recurrence,
		&reminderDate,
		&event.IsReminded,
		&relatedTask,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reminderDate.Valid {
		event.ReminderDate = &reminderDate.Time
	}
	if relatedTask.Valid {
		event.RelatedTask = &relatedTask.UUID
	}
	return event, nil
}

// Create persists a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, user_id, title, description, start_date, end_date, all_day, location, event_type, color, recurrence, reminder_date, is_reminded, related_task, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		event.ID,
		event.UserID,
		event.Title,
		event.Description,
		event.StartDate,
		event.EndDate,
		event.AllDay,
		event.Location,
		event.EventType,
		event.Color,
		event.Recurrence,
		event.ReminderDate,
		event.IsReminded,
		event.RelatedTask,
		now,
		now,
	).Scan(&event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// List retrieves the user's events, optionally restricted by type and by an
// overlap window, sorted by start date.
func (r *EventRepository) List(ctx context.Context, userID uuid.UUID, filter EventFilter) ([]*models.Event, error) {
	b := buildEventConds(userID, filter)
	query := `SELECT ` + eventColumns + ` FROM events` + b.where() + ` ORDER BY start_date ASC`

	return r.queryEvents(ctx, query, b.args...)
}

// Day returns all events overlapping the UTC calendar day that starts at day.
// The day window is half-open [day, day+24h) under the same overlap rule as
// range queries.
func (r *EventRepository) Day(ctx context.Context, userID uuid.UUID, day time.Time) ([]*models.Event, error) {
	dayEnd := day.Add(24 * time.Hour)
	query := `SELECT ` + eventColumns + ` FROM events
		WHERE user_id = $1 AND start_date < $2 AND end_date >= $3
		ORDER BY start_date ASC`

	return r.queryEvents(ctx, query, userID, dayEnd, day)
}

// Update persists changes to an existing event and refreshes updated_at
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, start_date = $4, end_date = $5, all_day = $6, location = $7, event_type = $8, color = $9, recurrence = $10, reminder_date = $11, is_reminded = $12, related_task = $13, updated_at = $14
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.StartDate,
		event.EndDate,
		event.AllDay,
		event.Location,
		event.EventType,
		event.Color,
		event.Recurrence,
		event.ReminderDate,
		event.IsReminded,
		event.RelatedTask,
		time.Now(),
	).Scan(&event.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("event %s: %w", event.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	return nil
}

// Delete removes an event by ID
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}

	return nil
}

// DueReminders returns events whose reminder time has passed and that have
// not been reminded yet.
func (r *EventRepository) DueReminders(ctx context.Context, now time.Time, limit int) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
		WHERE reminder_date IS NOT NULL AND reminder_date <= $1 AND NOT is_reminded
		ORDER BY reminder_date ASC LIMIT $2`

	return r.queryEvents(ctx, query, now, limit)
}

// MarkReminded records that the reminder for an event was delivered
func (r *EventRepository) MarkReminded(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET is_reminded = TRUE, updated_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark event reminded: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}
