package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/studyhub/studyhub-api/internal/models"
)

const (
	// DefaultPageSize is the page size used when the request omits one
	DefaultPageSize = 10
	// MaxPageSize caps the page size on every list endpoint
	MaxPageSize = 100
)

// Page describes pagination for list queries
type Page struct {
	Page  int
	Limit int
}

// Clamp normalizes the page to sane bounds: page >= 1, limit in [1, MaxPageSize]
func (p Page) Clamp() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// DateRange is a closed [Start, End] window. Both ends must be set for the
// range to apply.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the range is unset
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// TaskFilter holds the optional list filters for tasks
type TaskFilter struct {
	Statuses []models.TaskStatus
	Priority models.TaskPriority
	Category models.TaskCategory
	DueRange DateRange
}

// EventFilter holds the optional list filters for calendar events
type EventFilter struct {
	EventType models.EventType
	Window    DateRange
}

// NoteFilter holds the optional list filters for notes
type NoteFilter struct {
	IsJournal *bool
	Tags      []string
	Search    string
}

// JournalFilter restricts the journal view to a journal-date range
type JournalFilter struct {
	Range DateRange
}

// condBuilder accumulates WHERE conditions with positional args, the pattern
// used throughout the repositories for optional filters.
type condBuilder struct {
	conds []string
	args  []any
}

func newCondBuilder(conds []string, args ...any) *condBuilder {
	return &condBuilder{conds: conds, args: args}
}

// add appends a condition whose placeholders are written as %d verbs, e.g.
// "status = $%d", numbered after the args already collected.
func (b *condBuilder) add(format string, args ...any) {
	idxs := make([]any, len(args))
	for i := range args {
		idxs[i] = len(b.args) + i + 1
	}
	b.conds = append(b.conds, fmt.Sprintf(format, idxs...))
	b.args = append(b.args, args...)
}

func (b *condBuilder) where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// placeholders renders $n,$n+1,... for an IN clause starting at the next
// free arg position.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// buildTaskConds translates a TaskFilter into WHERE conditions scoped to one user
func buildTaskConds(userID any, f TaskFilter) *condBuilder {
	b := newCondBuilder([]string{"user_id = $1"}, userID)

	switch len(f.Statuses) {
	case 0:
	case 1:
		b.add("status = $%d", string(f.Statuses[0]))
	default:
		vals := make([]any, len(f.Statuses))
		for i, s := range f.Statuses {
			vals[i] = string(s)
		}
		cond := fmt.Sprintf("status IN (%s)", placeholders(len(b.args)+1, len(vals)))
		b.conds = append(b.conds, cond)
		b.args = append(b.args, vals...)
	}

	if f.Priority != "" {
		b.add("priority = $%d", string(f.Priority))
	}
	if f.Category != "" {
		b.add("category = $%d", string(f.Category))
	}
	if !f.DueRange.IsZero() {
		b.add("due_date >= $%d", f.DueRange.Start)
		b.add("due_date <= $%d", f.DueRange.End)
	}

	return b
}

// buildEventConds translates an EventFilter into WHERE conditions. The window
// matches any event overlapping [Start, End]: start_date <= End AND
// end_date >= Start. The one rule covers events starting in the window,
// ending in it, or spanning it entirely.
func buildEventConds(userID any, f EventFilter) *condBuilder {
	b := newCondBuilder([]string{"user_id = $1"}, userID)

	if f.EventType != "" {
		b.add("event_type = $%d", string(f.EventType))
	}
	if !f.Window.IsZero() {
		b.add("start_date <= $%d", f.Window.End)
		b.add("end_date >= $%d", f.Window.Start)
	}

	return b
}

// buildNoteConds translates a NoteFilter into WHERE conditions. The free-text
// search condition references the generated search_vector column; callers
// order by ts_rank when Search is set.
func buildNoteConds(userID any, f NoteFilter) *condBuilder {
	b := newCondBuilder([]string{"user_id = $1"}, userID)

	if f.IsJournal != nil {
		b.add("is_journal = $%d", *f.IsJournal)
	}
	if len(f.Tags) > 0 {
		b.add("tags && $%d", tagsParam(f.Tags))
	}
	if f.Search != "" {
		b.add("search_vector @@ plainto_tsquery('english', $%d)", f.Search)
	}

	return b
}
