package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskPriority represents how urgent a task is
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskCategory represents the life area a task belongs to
type TaskCategory string

const (
	TaskCategoryAcademic TaskCategory = "academic"
	TaskCategoryPersonal TaskCategory = "personal"
	TaskCategoryWork     TaskCategory = "work"
	TaskCategoryOther    TaskCategory = "other"
)

// Task represents a task item
type Task struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Priority     TaskPriority `json:"priority"`
	Status       TaskStatus   `json:"status"`
	DueDate      time.Time    `json:"due_date"`
	Category     TaskCategory `json:"category"`
	ReminderDate *time.Time   `json:"reminder_date,omitempty"`
	IsReminded   bool         `json:"is_reminded"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// PriorityRank maps a priority to a sortable weight (high first when descending)
func PriorityRank(p TaskPriority) int {
	switch p {
	case TaskPriorityHigh:
		return 3
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 1
	default:
		return 0
	}
}
