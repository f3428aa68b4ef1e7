package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/studyhub/studyhub-api/internal/database"
	"github.com/studyhub/studyhub-api/internal/models"
	"github.com/studyhub/studyhub-api/internal/request"
	"github.com/studyhub/studyhub-api/internal/validation"
)

// Pomodoro stats default to the trailing week; recent defaults to ten rows.
const (
	defaultStatsDays   = 7
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// PomodoroHandler handles focus session requests
type PomodoroHandler struct {
	pomodoroRepo database.PomodoroRepositoryInterface
	taskRepo     database.TaskRepositoryInterface
}

// NewPomodoroHandler creates a new pomodoro handler
func NewPomodoroHandler(pomodoroRepo database.PomodoroRepositoryInterface, taskRepo database.TaskRepositoryInterface) *PomodoroHandler {
	return &PomodoroHandler{pomodoroRepo: pomodoroRepo, taskRepo: taskRepo}
}

// RegisterRoutes registers pomodoro routes on the given router.
// The router should already have the /pomodoro prefix.
func (h *PomodoroHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/start", h.StartPomodoro).Methods("POST")
	r.HandleFunc("/stats", h.Stats).Methods("GET")
	r.HandleFunc("/recent", h.Recent).Methods("GET")
	r.HandleFunc("/{id}/complete", h.CompletePomodoro).Methods("PUT")
	r.HandleFunc("/{id}/interrupt", h.InterruptPomodoro).Methods("PUT")
}

// StatsResponse pairs the per-day aggregate rows with their range summary
type StatsResponse struct {
	Sessions []*models.PomodoroSession `json:"sessions"`
	Summary  models.PomodoroSummary    `json:"summary"`
}

// StartPomodoroRequest represents a start request
type StartPomodoroRequest struct {
	Duration      int        `json:"duration" validate:"omitempty,gte=1,lte=240"`
	BreakDuration int        `json:"break_duration" validate:"omitempty,gte=1,lte=60"`
	TaskID        *uuid.UUID `json:"task_id"`
}

func (h *PomodoroHandler) loadOwnedPomodoro(w http.ResponseWriter, r *http.Request, user *models.User) *models.Pomodoro {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid pomodoro ID")
		return nil
	}

	pomodoro, err := h.pomodoroRepo.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondJSONError(w, http.StatusNotFound, "Pomodoro not found")
		return nil
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to retrieve pomodoro")
		return nil
	}
	if pomodoro.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Pomodoro does not belong to user")
		return nil
	}
	return pomodoro
}

// StartPomodoro starts a focus session and counts it toward today's aggregate
func (h *PomodoroHandler) StartPomodoro(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req StartPomodoroRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if req.TaskID != nil {
		task, err := h.taskRepo.GetByID(r.Context(), *req.TaskID)
		if errors.Is(err, database.ErrNotFound) {
			respondJSONError(w, http.StatusNotFound, "Related task not found")
			return
		}
		if err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Failed to verify related task")
			return
		}
		if task.UserID != user.ID {
			respondJSONError(w, http.StatusForbidden, "Related task does not belong to user")
			return
		}
	}

	now := time.Now()
	pomodoro := &models.Pomodoro{
		ID:            uuid.New(),
		UserID:        user.ID,
		StartTime:     now,
		Duration:      models.DefaultPomodoroDuration,
		BreakDuration: models.DefaultPomodoroBreakDuration,
		Status:        models.PomodoroStatusRunning,
		TaskID:        req.TaskID,
		CreatedAt:     now,
	}
	if req.Duration > 0 {
		pomodoro.Duration = req.Duration
	}
	if req.BreakDuration > 0 {
		pomodoro.BreakDuration = req.BreakDuration
	}

	if err := h.pomodoroRepo.Start(r.Context(), pomodoro); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to start pomodoro")
		return
	}

	respondJSON(w, http.StatusCreated, pomodoro)
}

// CompletePomodoro finishes a running session and credits today's aggregate.
// A session already in a terminal state is rejected with 409.
func (h *PomodoroHandler) CompletePomodoro(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	pomodoro := h.loadOwnedPomodoro(w, r, user)
	if pomodoro == nil {
		return
	}

	err := h.pomodoroRepo.Complete(r.Context(), pomodoro)
	if errors.Is(err, database.ErrInvalidState) {
		respondJSONError(w, http.StatusConflict, "Pomodoro already finished")
		return
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to complete pomodoro")
		return
	}

	respondJSON(w, http.StatusOK, pomodoro)
}

// InterruptPomodoro abandons a running session without completion credit
func (h *PomodoroHandler) InterruptPomodoro(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	pomodoro := h.loadOwnedPomodoro(w, r, user)
	if pomodoro == nil {
		return
	}

	err := h.pomodoroRepo.Interrupt(r.Context(), pomodoro)
	if errors.Is(err, database.ErrInvalidState) {
		respondJSONError(w, http.StatusConflict, "Pomodoro already finished")
		return
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to interrupt pomodoro")
		return
	}

	respondJSON(w, http.StatusOK, pomodoro)
}

// Stats summarizes daily aggregates over a date range, trailing seven days
// by default
func (h *PomodoroHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	dateRange, err := parseDateRange(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if dateRange.IsZero() {
		now := time.Now()
		dateRange = database.DateRange{
			Start: models.SessionDay(now.AddDate(0, 0, -defaultStatsDays)),
			End:   models.SessionDay(now),
		}
	}

	sessions, err := h.pomodoroRepo.SessionsInRange(r.Context(), user.ID, dateRange.Start, dateRange.End)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to retrieve pomodoro stats")
		return
	}
	if sessions == nil {
		sessions = []*models.PomodoroSession{}
	}

	respondJSON(w, http.StatusOK, StatsResponse{
		Sessions: sessions,
		Summary:  models.Summarize(sessions),
	})
}

// Recent lists the most recent sessions, newest first
func (h *PomodoroHandler) Recent(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	limit := defaultRecentLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	pomodoros, err := h.pomodoroRepo.Recent(r.Context(), user.ID, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to retrieve recent pomodoros")
		return
	}
	if pomodoros == nil {
		pomodoros = []*models.Pomodoro{}
	}

	respondList(w, http.StatusOK, pomodoros, len(pomodoros), nil)
}
