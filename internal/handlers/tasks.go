package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/studyhub/studyhub-api/internal/database"
	"github.com/studyhub/studyhub-api/internal/models"
	"github.com/studyhub/studyhub-api/internal/request"
	"github.com/studyhub/studyhub-api/internal/validation"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskRepo database.TaskRepositoryInterface
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskRepo database.TaskRepositoryInterface) *TaskHandler {
	return &TaskHandler{taskRepo: taskRepo}
}

// RegisterRoutes registers task routes on the given router.
// The router should already have the /tasks prefix.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/upcoming", h.UpcomingTasks).Methods("GET")
	r.HandleFunc("/overdue", h.OverdueTasks).Methods("GET")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
}

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Title        string     `json:"title" validate:"required,max=100"`
	Description  string     `json:"description" validate:"max=500"`
	Priority     string     `json:"priority" validate:"omitempty,task_priority"`
	Status       string     `json:"status" validate:"omitempty,task_status"`
	DueDate      *time.Time `json:"due_date" validate:"required"`
	Category     string     `json:"category" validate:"omitempty,task_category"`
	ReminderDate *time.Time `json:"reminder_date"`
}

// UpdateTaskRequest represents a partial task update
type UpdateTaskRequest struct {
	Title        *string    `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Description  *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	Priority     *string    `json:"priority,omitempty" validate:"omitempty,task_priority"`
	Status       *string    `json:"status,omitempty" validate:"omitempty,task_status"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Category     *string    `json:"category,omitempty" validate:"omitempty,task_category"`
	ReminderDate *time.Time `json:"reminder_date,omitempty"`
}

// loadOwnedTask fetches a task by path id and enforces ownership. Absent
// tasks 404 before the ownership check runs. Returns nil when a response has
// already been written.
func (h *TaskHandler) loadOwnedTask(w http.ResponseWriter, r *http.Request, user *models.User) *models.Task {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid task ID")
		return nil
	}

	task, err := h.taskRepo.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondJSONError(w, http.StatusNotFound, "Task not found")
		return nil
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to retrieve task")
		return nil
	}
	if task.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Task does not belong to user")
		return nil
	}
	return task
}

// ListTasks lists tasks for the authenticated user with filters and pagination
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	filter := database.TaskFilter{}

	// Comma-separated statuses: one value matches exactly, several match any.
	if s := r.URL.Query().Get("status"); s != "" {
		for _, part := range strings.Split(s, ",") {
			status := models.TaskStatus(strings.TrimSpace(part))
			switch status {
			case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
				filter.Statuses = append(filter.Statuses, status)
			default:
				respondJSONError(w, http.StatusBadRequest, "Invalid status filter: "+string(status))
				return
			}
		}
	}

	if p := r.URL.Query().Get("priority"); p != "" {
		switch models.TaskPriority(p) {
		case models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh:
			filter.Priority = models.TaskPriority(p)
		default:
			respondJSONError(w, http.StatusBadRequest, "Invalid priority filter: "+p)
			return
		}
	}

	if c := r.URL.Query().Get("category"); c != "" {
		switch models.TaskCategory(c) {
		case models.TaskCategoryAcademic, models.TaskCategoryPersonal, models.TaskCategoryWork, models.TaskCategoryOther:
			filter.Category = models.TaskCategory(c)
		default:
			respondJSONError(w, http.StatusBadRequest, "Invalid category filter: "+c)
			return
		}
	}

	dueRange, err := parseDateRange(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.DueRange = dueRange

	page := parsePage(r)
	tasks, total, err := h.taskRepo.List(r.Context(), user.ID, filter, page)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to retrieve tasks")
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}

	respondList(w, http.StatusOK, tasks, len(tasks), NewPagination(page, total))
}

// CreateTask creates a new task owned by the caller
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req CreateTaskRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	req.Title = validation.SanitizeText(req.Title)
	if req.Title == "" {
		respondJSONError(w, http.StatusBadRequest, "Title cannot be empty")
		return
	}

	task := &models.Task{
		ID:           uuid.New(),
		UserID:       user.ID,
		Title:        req.Title,
		Description:  validation.SanitizeText(req.Description),
		Priority:     models.TaskPriorityMedium,
		Status:       models.TaskStatusPending,
		DueDate:      *req.DueDate,
		Category:     models.TaskCategoryAcademic,
		ReminderDate: req.ReminderDate,
	}
	if req.Priority != "" {
		task.Priority = models.TaskPriority(req.Priority)
	}
	if req.Status != "" {
		task.Status = models.TaskStatus(req.Status)
	}
	if req.Category != "" {
		task.Category = models.TaskCategory(req.Category)
	}

	if err := h.taskRepo.Create(r.Context(), task); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to create task")
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// GetTask retrieves a task by ID
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	task := h.loadOwnedTask(w, r, user)
	if task == nil {
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial update to an owned task
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	task := h.loadOwnedTask(w, r, user)
	if task == nil {
		return
	}

	var req UpdateTaskRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if req.Title != nil {
		title := validation.SanitizeText(*req.Title)
		if title == "" {
			respondJSONError(w, http.StatusBadRequest, "Title cannot be empty")
			return
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = validation.SanitizeText(*req.Description)
	}
	if req.Priority != nil {
		task.Priority = models.TaskPriority(*req.Priority)
	}
	if req.Status != nil {
		task.Status = models.TaskStatus(*req.Status)
	}
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
	}
	if req.Category != nil {
		task.Category = models.TaskCategory(*req.Category)
	}
	if req.ReminderDate != nil {
		task.ReminderDate = req.ReminderDate
		// A rescheduled reminder fires again.
		task.IsReminded = false
	}

	if err := h.taskRepo.Update(r.Context(), task); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to update task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// DeleteTask deletes an owned task
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	task := h.loadOwnedTask(w, r, user)
	if task == nil {
		return
	}

	if err := h.taskRepo.Delete(r.Context(), task.ID); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to delete task")
		return
	}

	respondMessage(w, http.StatusOK, "Task deleted")
}

// UpcomingTasks lists open tasks due within the next seven days
func (h *TaskHandler) UpcomingTasks(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	tasks, err := h.taskRepo.Upcoming(r.Context(), user.ID, time.Now())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to retrieve tasks")
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}

	respondList(w, http.StatusOK, tasks, len(tasks), nil)
}

// OverdueTasks lists unfinished tasks whose due date has passed
func (h *TaskHandler) OverdueTasks(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	tasks, err := h.taskRepo.Overdue(r.Context(), user.ID, time.Now())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to retrieve tasks")
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}

	respondList(w, http.StatusOK, tasks, len(tasks), nil)
}
