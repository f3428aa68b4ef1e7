package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/studyhub/studyhub-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate

	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	for tag, fn := range map[string]validator.Func{
		"task_priority":   validateTaskPriority,
		"task_status":     validateTaskStatus,
		"task_category":   validateTaskCategory,
		"event_type":      validateEventType,
		"recurrence":      validateRecurrence,
		"hex_color":       validateHexColor,
	} {
		if err := Validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
		}
	}
}

// validateTaskPriority validates that a string is a valid TaskPriority enum value
func validateTaskPriority(fl validator.FieldLevel) bool {
	switch models.TaskPriority(fl.Field().String()) {
	case models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// validateTaskStatus validates that a string is a valid TaskStatus enum value
func validateTaskStatus(fl validator.FieldLevel) bool {
	switch models.TaskStatus(fl.Field().String()) {
	case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// validateTaskCategory validates that a string is a valid TaskCategory enum value
func validateTaskCategory(fl validator.FieldLevel) bool {
	switch models.TaskCategory(fl.Field().String()) {
	case models.TaskCategoryAcademic, models.TaskCategoryPersonal, models.TaskCategoryWork, models.TaskCategoryOther:
		return true
	default:
		return false
	}
}

// validateEventType validates that a string is a valid EventType enum value
func validateEventType(fl validator.FieldLevel) bool {
	switch models.EventType(fl.Field().String()) {
	case models.EventTypeClass, models.EventTypeExam, models.EventTypeAssignment,
		models.EventTypeMeeting, models.EventTypePersonal, models.EventTypeOther:
		return true
	default:
		return false
	}
}

// validateRecurrence validates that a string is a valid Recurrence enum value
func validateRecurrence(fl validator.FieldLevel) bool {
	switch models.Recurrence(fl.Field().String()) {
	case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// validateHexColor accepts #rgb and #rrggbb forms
func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorPattern.MatchString(fl.Field().String())
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// FieldError is one field-level validation failure, surfaced to clients in
// the error envelope.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors converts a validator error into per-field messages. The field
// name is the struct field's lowered JSON-ish name; unknown error shapes
// collapse into a single "request" entry.
func FieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "request", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fieldName(fe),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldName(fe validator.FieldError) string {
	// Namespace is like "CreateTaskRequest.DueDate"; keep the leaf.
	name := fe.Field()
	return toSnake(name)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "task_priority":
		return "must be one of: low, medium, high"
	case "task_status":
		return "must be one of: pending, in-progress, completed"
	case "task_category":
		return "must be one of: academic, personal, work, other"
	case "event_type":
		return "must be one of: class, exam, assignment, meeting, personal, other"
	case "recurrence":
		return "must be one of: none, daily, weekly, monthly"
	case "hex_color":
		return "must be a hex color like #3788d8"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
