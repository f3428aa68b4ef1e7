package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/studyhub/studyhub-api/internal/database"
	"github.com/studyhub/studyhub-api/internal/models"
	"github.com/studyhub/studyhub-api/internal/request"
	"github.com/studyhub/studyhub-api/internal/validation"
)

// NoteHandler handles note and journal requests
type NoteHandler struct {
	noteRepo database.NoteRepositoryInterface
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteRepo database.NoteRepositoryInterface) *NoteHandler {
	return &NoteHandler{noteRepo: noteRepo}
}

// RegisterRoutes registers note routes on the given router.
// The router should already have the /notes prefix.
func (h *NoteHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListNotes).Methods("GET")
	r.HandleFunc("", h.CreateNote).Methods("POST")
	r.HandleFunc("/journal", h.JournalNotes).Methods("GET")
	r.HandleFunc("/{id}", h.GetNote).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateNote).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteNote).Methods("DELETE")
}

// CreateNoteRequest represents a create note request. Content is stored
// verbatim; the clients are trusted renderers.
type CreateNoteRequest struct {
	Title       string     `json:"title" validate:"required,max=100"`
	Content     string     `json:"content" validate:"required"`
	Tags        []string   `json:"tags" validate:"max=10"`
	IsJournal   bool       `json:"is_journal"`
	JournalDate *time.Time `json:"journal_date"`
}

// UpdateNoteRequest represents a partial note update
type UpdateNoteRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Content     *string    `json:"content,omitempty" validate:"omitempty,min=1"`
	Tags        *[]string  `json:"tags,omitempty"`
	IsJournal   *bool      `json:"is_journal,omitempty"`
	JournalDate *time.Time `json:"journal_date,omitempty"`
}

func (h *NoteHandler) loadOwnedNote(w http.ResponseWriter, r *http.Request, user *models.User) *models.Note {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid note ID")
		return nil
	}

	note, err := h.noteRepo.GetByID(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondJSONError(w, http.StatusNotFound, "Note not found")
		return nil
	}
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to retrieve note")
		return nil
	}
	if note.UserID != user.ID {
		respondJSONError(w, http.StatusForbidden, "Note does not belong to user")
		return nil
	}
	return note
}

// ListNotes lists notes with optional tag, journal and free-text filters.
// When search is set the results come back relevance-ranked instead of
// newest-first.
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	filter := database.NoteFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	}
	if tags := r.URL.Query().Get("tags"); tags != "" {
		filter.Tags = models.NormalizeTags(strings.Split(tags, ","))
	}
	if ij := r.URL.Query().Get("isJournal"); ij != "" {
		val, err := strconv.ParseBool(ij)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Invalid isJournal filter: "+ij)
			return
		}
		filter.IsJournal = &val
	}

	page := parsePage(r)
	notes, total, err := h.noteRepo.List(r.Context(), user.ID, filter, page)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to retrieve notes")
		return
	}
	if notes == nil {
		notes = []*models.Note{}
	}

	respondList(w, http.StatusOK, notes, len(notes), NewPagination(page, total))
}

// JournalNotes lists journal entries newest journal day first
func (h *NoteHandler) JournalNotes(w http.ResponseWriter, r *http.Request) {
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

	page := parsePage(r)
	notes, total, err := h.noteRepo.Journal(r.Context(), user.ID, database.JournalFilter{Range: dateRange}, page)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to retrieve journal entries")
		return
	}
	if notes == nil {
		notes = []*models.Note{}
	}

	respondList(w, http.StatusOK, notes, len(notes), NewPagination(page, total))
}

// CreateNote creates a new note owned by the caller
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req CreateNoteRequest
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

	tags := models.NormalizeTags(req.Tags)
	if len(tags) > models.MaxNoteTags {
		respondJSONError(w, http.StatusBadRequest, fmt.Sprintf("At most %d tags allowed", models.MaxNoteTags))
		return
	}

	note := &models.Note{
		ID:        uuid.New(),
		UserID:    user.ID,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      tags,
		IsJournal: req.IsJournal,
	}
	if req.IsJournal {
		if req.JournalDate != nil {
			note.JournalDate = req.JournalDate
		} else {
			now := time.Now()
			note.JournalDate = &now
		}
	}

	if err := h.noteRepo.Create(r.Context(), note); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to create note")
		return
	}

	respondJSON(w, http.StatusCreated, note)
}

// GetNote retrieves a note by ID
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	note := h.loadOwnedNote(w, r, user)
	if note == nil {
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// UpdateNote applies a partial update to an owned note
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	note := h.loadOwnedNote(w, r, user)
	if note == nil {
		return
	}

	var req UpdateNoteRequest
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
		note.Title = title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.Tags != nil {
		tags := models.NormalizeTags(*req.Tags)
		if len(tags) > models.MaxNoteTags {
			respondJSONError(w, http.StatusBadRequest, fmt.Sprintf("At most %d tags allowed", models.MaxNoteTags))
			return
		}
		note.Tags = tags
	}
	if req.IsJournal != nil {
		note.IsJournal = *req.IsJournal
		if !note.IsJournal {
			note.JournalDate = nil
		}
	}
	if req.JournalDate != nil {
		note.JournalDate = req.JournalDate
	}
	if note.IsJournal && note.JournalDate == nil {
		now := time.Now()
		note.JournalDate = &now
	}

	if err := h.noteRepo.Update(r.Context(), note); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to update note")
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// DeleteNote deletes an owned note
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	note := h.loadOwnedNote(w, r, user)
	if note == nil {
		return
	}

	if err := h.noteRepo.Delete(r.Context(), note.ID); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Failed to delete note")
		return
	}

	respondMessage(w, http.StatusOK, "Note deleted")
}
