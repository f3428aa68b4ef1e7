package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxNoteTags is the maximum number of tags per note
const MaxNoteTags = 10

// Note represents a note or journal entry. Content is stored verbatim; the
// trusted clients render it themselves.
type Note struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	IsJournal   bool       `json:"is_journal"`
	JournalDate *time.Time `json:"journal_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NormalizeTags trims whitespace from each tag and drops empties, preserving
// order of first occurrence.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		s := strings.TrimSpace(t)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
