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

// UserRepository handles user database operations
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate looks up the user identified by claims.Sub, creating the row
// on first sight. Email and name are refreshed from the token on every hit
// so profile edits at the identity provider propagate without a sync job.
func (r *UserRepository) GetOrCreate(ctx context.Context, claims *models.TokenClaims) (*models.User, error) {
	user := &models.User{}
	query := `
		INSERT INTO users (id, email, subject, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (subject) DO UPDATE SET
			email = EXCLUDED.email,
			name = COALESCE(EXCLUDED.name, users.name),
			updated_at = EXCLUDED.updated_at
		RETURNING id, email, subject, name, created_at, updated_at
	`

	var name *string
	if claims.Name != "" {
		name = &claims.Name
	}

	err := r.db.QueryRowContext(ctx, query,
		uuid.New(),
		claims.Email,
		claims.Sub,
		name,
		time.Now(),
	).Scan(
		&user.ID,
		&user.Email,
		&user.Subject,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, subject, name, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Subject,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
