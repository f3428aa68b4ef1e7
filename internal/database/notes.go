package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/studyhub/studyhub-api/internal/models"
)

const noteColumns = "id, user_id, title, content, tags, is_journal, journal_date, created_at, updated_at"

// tagsParam wraps a tag slice for use as a Postgres text[] parameter
func tagsParam(tags []string) any {
	return pq.Array(tags)
}

// NoteRepository handles note database operations
type NoteRepository struct {
	db *DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func scanNote(row interface{ Scan(...any) error }) (*models.Note, error) {
	note := &models.Note{}
	var journalDate sql.NullTime
	err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Content,
		pq.Array(&note.Tags),
		&note.IsJournal,
		&journalDate,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if journalDate.Valid {
		note.JournalDate = &journalDate.Time
	}
	return note, nil
}

// Create persists a new note
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (id, user_id, title, content, tags, is_journal, journal_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		pq.Array(note.Tags),
		note.IsJournal,
		note.JournalDate,
		now,
		now,
	).Scan(&note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// GetByID retrieves a note by ID
func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`

	note, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

// List retrieves a filtered, paginated page of the user's notes plus the
// total count. Free-text searches are ordered by relevance; everything else
// by newest first.
func (r *NoteRepository) List(ctx context.Context, userID uuid.UUID, filter NoteFilter, page Page) ([]*models.Note, int, error) {
	page = page.Clamp()
	b := buildNoteConds(userID, filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM notes` + b.where()
	if err := r.db.QueryRowContext(ctx, countQuery, b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notes: %w", err)
	}

	order := ` ORDER BY created_at DESC`
	if filter.Search != "" {
		order = fmt.Sprintf(` ORDER BY ts_rank(search_vector, plainto_tsquery('english', $%d)) DESC`, len(b.args)+1)
		b.args = append(b.args, filter.Search)
	}

	query := `SELECT ` + noteColumns + ` FROM notes` + b.where() + order +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(b.args)+1, len(b.args)+2)
	args := append(b.args, page.Limit, page.Offset())

	notes, err := r.queryNotes(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// Journal retrieves journal entries, optionally restricted to a journal-date
// range, newest journal day first.
func (r *NoteRepository) Journal(ctx context.Context, userID uuid.UUID, filter JournalFilter, page Page) ([]*models.Note, int, error) {
	page = page.Clamp()
	b := newCondBuilder([]string{"user_id = $1", "is_journal = TRUE"}, userID)
	if !filter.Range.IsZero() {
		b.add("journal_date >= $%d", filter.Range.Start)
		b.add("journal_date <= $%d", filter.Range.End)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM notes` + b.where()
	if err := r.db.QueryRowContext(ctx, countQuery, b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count journal entries: %w", err)
	}

	query := `SELECT ` + noteColumns + ` FROM notes` + b.where() +
		` ORDER BY journal_date DESC, created_at DESC` +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(b.args)+1, len(b.args)+2)
	args := append(b.args, page.Limit, page.Offset())

	notes, err := r.queryNotes(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// Update persists changes to an existing note and refreshes updated_at
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	query := `
		UPDATE notes
		SET title = $2, content = $3, tags = $4, is_journal = $5, journal_date = $6, updated_at = $7
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		note.ID,
		note.Title,
		note.Content,
		pq.Array(note.Tags),
		note.IsJournal,
		note.JournalDate,
		time.Now(),
	).Scan(&note.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("note %s: %w", note.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

// Delete removes a note by ID
func (r *NoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("note %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *NoteRepository) queryNotes(ctx context.Context, query string, args ...any) ([]*models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return notes, nil
}
