package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account. Users are provisioned automatically on the
// first authenticated request, keyed by the token subject; credential
// handling and token issuance live outside this service.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Subject   string    `json:"-"`
	Name      *string   `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenClaims are the claims this service reads from a verified bearer token
type TokenClaims struct {
	Sub   string
	Email string
	Name  string
	Exp   int64
	Iat   int64
	Iss   string
}
