package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies a calendar event
type EventType string

const (
	EventTypeClass      EventType = "class"
	EventTypeExam       EventType = "exam"
	EventTypeAssignment EventType = "assignment"
	EventTypeMeeting    EventType = "meeting"
	EventTypePersonal   EventType = "personal"
	EventTypeOther      EventType = "other"
)

// Recurrence describes how often an event repeats. Stored as-is; the API does
// not expand recurring events into individual occurrences.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// DefaultEventColor is the color assigned when a create request omits one
const DefaultEventColor = "#3788d8"

// Event represents a calendar event
type Event struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      time.Time  `json:"end_date"`
	AllDay       bool       `json:"all_day"`
	Location     string     `json:"location,omitempty"`
	EventType    EventType  `json:"event_type"`
	Color        string     `json:"color"`
	Recurrence   Recurrence `json:"recurrence"`
	ReminderDate *time.Time `json:"reminder_date,omitempty"`
	IsReminded   bool       `json:"is_reminded"`
	RelatedTask  *uuid.UUID `json:"related_task,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Overlaps reports whether the event overlaps the window [start, end].
// An event overlaps iff it starts no later than the window end and ends no
// earlier than the window start. The same rule serves range queries and the
// day view, so boundary semantics are uniform across endpoints.
func (e *Event) Overlaps(start, end time.Time) bool {
	return !e.StartDate.After(end) && !e.EndDate.Before(start)
}
