package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// PomodoroStatus is the lifecycle state of a focus session. A pomodoro starts
// running and reaches exactly one terminal state; completed and interrupted
// are mutually exclusive by construction.
type PomodoroStatus string

const (
	PomodoroStatusRunning     PomodoroStatus = "running"
	PomodoroStatusCompleted   PomodoroStatus = "completed"
	PomodoroStatusInterrupted PomodoroStatus = "interrupted"
)

// Default focus and break lengths in minutes
const (
	DefaultPomodoroDuration      = 25
	DefaultPomodoroBreakDuration = 5
)

// Pomodoro represents a single focus session
type Pomodoro struct {
	ID            uuid.UUID      `json:"id"`
	UserID        uuid.UUID      `json:"user_id"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       *time.Time     `json:"end_time,omitempty"`
	Duration      int            `json:"duration"`       // minutes
	BreakDuration int            `json:"break_duration"` // minutes
	Status        PomodoroStatus `json:"status"`
	TaskID        *uuid.UUID     `json:"task_id,omitempty"`
	TaskTitle     *string        `json:"task_title,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// IsTerminal reports whether the pomodoro has finished (completed or interrupted)
func (p *Pomodoro) IsTerminal() bool {
	return p.Status != PomodoroStatusRunning
}

// PomodoroSession is the daily rollup of pomodoro activity for one user.
// There is one row per (user, UTC calendar day), created lazily on the first
// start of the day and maintained with atomic increments.
type PomodoroSession struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	Date              time.Time `json:"date"`
	TotalSessions     int       `json:"total_sessions"`
	CompletedSessions int       `json:"completed_sessions"`
	TotalFocusTime    int       `json:"total_focus_time"` // minutes
}

// PomodoroSummary aggregates session rows over a date range
type PomodoroSummary struct {
	TotalSessions     int     `json:"totalSessions"`
	CompletedSessions int     `json:"completedSessions"`
	TotalFocusTime    int     `json:"totalFocusTime"`
	CompletionRate    float64 `json:"completionRate"`
}

// Summarize folds per-day session rows into a summary. The completion rate is
// completed/total as a percentage rounded to two decimals, zero when there
// were no sessions.
func Summarize(sessions []*PomodoroSession) PomodoroSummary {
	var s PomodoroSummary
	for _, row := range sessions {
		s.TotalSessions += row.TotalSessions
		s.CompletedSessions += row.CompletedSessions
		s.TotalFocusTime += row.TotalFocusTime
	}
	if s.TotalSessions > 0 {
		rate := float64(s.CompletedSessions) / float64(s.TotalSessions) * 100
		s.CompletionRate = math.Round(rate*100) / 100
	}
	return s
}

// SessionDay truncates t to its UTC calendar day, the partition key for
// PomodoroSession rows.
func SessionDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
