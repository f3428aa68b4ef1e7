package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/studyhub/studyhub-api/internal/database"
	"github.com/studyhub/studyhub-api/internal/models"
	"github.com/studyhub/studyhub-api/internal/request"
	"github.com/studyhub/studyhub-api/internal/validation"
)

// EventHandler handles calendar event requests
type EventHandler struct {
	eventRepo database.EventRepositoryInterface
	taskRepo  database.TaskRepositoryInterface
}

// NewEventHandler creates a new event handler. The task repository backs the
// related-task cross-check on writes.
func NewEventHandler(eventRepo database.EventRepositoryInterface, taskRepo database.TaskRepositoryInterface) *EventHandler {
	return &EventHandler{eventRepo: eventRepo, taskRepo: taskRepo}
}

// RegisterRoutes registers event routes on the given router.
// The router should already have the /calendar prefix.
func (h *EventHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListEvents).Methods("GET")
	r.HandleFunc("", h.CreateEvent).Methods("POST")
	r.HandleFunc("/day/{date}", h.DayEvents).Methods("GET")
	r.HandleFunc("/{id}", h.GetEvent).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateEvent).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteEvent).Methods("DELETE")
}

// CreateEventRequest represents a create event request
type CreateEventRequest struct {
	Title        string     `json:"title" validate:"required,max=100"`
	Description  string     `json:"description" validate:"max=500"`
	StartDate    *time.Time `json:"start_date" validate:"required"`
	EndDate      *time.Time `json:"end_date" validate:"required"`
	AllDay       bool       `json:"all_day"`
	Location     string     `json:"location" validate:"max=200"`
	EventType    string     `json:"event_type" validate:"omitempty,event_type"`
	Color        string     `json:"color" validate:"omitempty,hex_color"`
	Recurrence   string     `json:"recurrence" validate:"omitempty,recurrence"`
	ReminderDate *time.Time `json:"reminder_date"`
	RelatedTask  *uuid.UUID `json:"related_task"`
}

// UpdateEventRequest represents a partial event update
type UpdateEventRequest struct {
	Title        *string    `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Description  *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	AllDay       *bool      `json:"all_day,omitempty"`
	Location     *string    `json:"location,omitempty" validate:"omitempty,max=200"`
	EventType    *string    `json:"event_type,omitempty" validate:"omitempty,event_type"`
	Color        *string    `json:"color,omitempty" validate:"omitempty,hex_color"`
	Recurrence   *string    `json:"recurrence,omitempty" validate:"omitempty,recurrence"`
	ReminderDate *time.Time `json:"reminder_date,omitempty"`
	RelatedTask  *uuid.UUID `json:"related_task,omitempty"`
}

// checkRelatedTask verifies that a referenced task exists and belongs to the
// caller. Point-in-time only; deleting the task later leaves a dangling
// reference which the database nulls out. Returns false when a response has
// been written.
func (h *EventHandler) checkRelatedTask(w http.ResponseWriter, r *http.Request, user *models.User, taskID uuid.UUID) bool {
	task, err := h.taskRepo.GetByID(r.Context(), taskID)
	if errors.Is(err, database.ErrNotFound) {
		respondJSONError(w, http.StatusNotFound, "Related task not found")
		return false
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to verify related task")
		return false
	}
	if task.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Related task does not belong to user")
		return false
	}
	return true
}

func (h *EventHandler) loadOwnedEvent(w http.ResponseWriter, r *http.Request, user *models.User) *models.Event {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid event ID")
		return nil
	}

	event, err := h.eventRepo.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondJSONError(w, http.StatusNotFound, "Event not found")
		return nil
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to retrieve event")
		return nil
	}
	if event.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Event does not belong to user")
		return nil
	}
	return event
}

// ListEvents lists events overlapping an optional date window
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	filter := database.EventFilter{}
	if et := r.URL.Query().Get("eventType"); et != "" {
		switch models.EventType(et) {
		case models.EventTypeClass, models.EventTypeExam, models.EventTypeAssignment,
			models.EventTypeMeeting, models.EventTypePersonal, models.EventTypeOther:
			filter.EventType = models.EventType(et)
		default:
			respondJSONError(w, http.StatusBadRequest, "Invalid eventType filter: "+et)
			return
		}
	}

	window, err := parseDateRange(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.Window = window

	events, err := h.eventRepo.List(r.Context(), user.ID, filter)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}
	if events == nil {
		events = []*models.Event{}
	}

	respondList(w, http.StatusOK, events, len(events), nil)
}

// DayEvents lists every event overlapping one calendar day
func (h *EventHandler) DayEvents(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	day, err := time.Parse("2006-01-02", mux.Vars(r)["date"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	events, err := h.eventRepo.Day(r.Context(), user.ID, day)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to retrieve events")
		return
	}
	if events == nil {
		events = []*models.Event{}
	}

	respondList(w, http.StatusOK, events, len(events), nil)
}

// CreateEvent creates a new event owned by the caller
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req CreateEventRequest
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
	if req.EndDate.Before(*req.StartDate) {
		respondJSONError(w, http.StatusBadRequest, "end_date must not precede start_date")
		return
	}

	if req.RelatedTask != nil && !h.checkRelatedTask(w, r, user, *req.RelatedTask) {
		return
	}

	event := &models.Event{
		ID:           uuid.New(),
		UserID:       user.ID,
		Title:        req.Title,
		Description:  validation.SanitizeText(req.Description),
		StartDate:    *req.StartDate,
		EndDate:      *req.EndDate,
		AllDay:       req.AllDay,
		Location:     validation.SanitizeText(req.Location),
		EventType:    models.EventTypeOther,
		Color:        models.DefaultEventColor,
		Recurrence:   models.RecurrenceNone,
		ReminderDate: req.ReminderDate,
		RelatedTask:  req.RelatedTask,
	}
	if req.EventType != "" {
		event.EventType = models.EventType(req.EventType)
	}
	if req.Color != "" {
		event.Color = req.Color
	}
	if req.Recurrence != "" {
		event.Recurrence = models.Recurrence(req.Recurrence)
	}

	if err := h.eventRepo.Create(r.Context(), event); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

// GetEvent retrieves an event by ID
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	event := h.loadOwnedEvent(w, r, user)
	if event == nil {
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// UpdateEvent applies a partial update to an owned event
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	event := h.loadOwnedEvent(w, r, user)
	if event == nil {
		return
	}

	var req UpdateEventRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if req.RelatedTask != nil && !h.checkRelatedTask(w, r, user, *req.RelatedTask) {
		return
	}

	if req.Title != nil {
		title := validation.SanitizeText(*req.Title)
		if title == "" {
			respondJSONError(w, http.StatusBadRequest, "Title cannot be empty")
			return
		}
		event.Title = title
	}
	if req.Description != nil {
		event.Description = validation.SanitizeText(*req.Description)
	}
	if req.StartDate != nil {
		event.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		event.EndDate = *req.EndDate
	}
	if event.EndDate.Before(event.StartDate) {
		respondJSONError(w, http.StatusBadRequest, "end_date must not precede start_date")
		return
	}
	if req.AllDay != nil {
		event.AllDay = *req.AllDay
	}
	if req.Location != nil {
		event.Location = validation.SanitizeText(*req.Location)
	}
	if req.EventType != nil {
		event.EventType = models.EventType(*req.EventType)
	}
	if req.Color != nil {
		event.Color = *req.Color
	}
	if req.Recurrence != nil {
		event.Recurrence = models.Recurrence(*req.Recurrence)
	}
	if req.ReminderDate != nil {
		event.ReminderDate = req.ReminderDate
		event.IsReminded = false
	}
	if req.RelatedTask != nil {
		event.RelatedTask = req.RelatedTask
	}

	if err := h.eventRepo.Update(r.Context(), event); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to update event")
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// DeleteEvent deletes an owned event
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	event := h.loadOwnedEvent(w, r, user)
	if event == nil {
		return
	}

	if err := h.eventRepo.Delete(r.Context(), event.ID); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}

	respondMessage(w, http.StatusOK, "Event deleted")
}
