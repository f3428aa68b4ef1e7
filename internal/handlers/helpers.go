package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/studyhub/studyhub-api/internal/database"
	"github.com/studyhub/studyhub-api/internal/validation"
)

// PageRef points a client at an adjacent page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries the next/prev page references for paginated lists. A nil
// side means no page in that direction.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// NewPagination builds the next/prev refs for a clamped page against the
// total row count.
func NewPagination(page database.Page, total int) *Pagination {
	p := &Pagination{}
	if page.Offset()+page.Limit < total {
		p.Next = &PageRef{Page: page.Page + 1, Limit: page.Limit}
	}
	if page.Page > 1 {
		p.Prev = &PageRef{Page: page.Page - 1, Limit: page.Limit}
	}
	if p.Next == nil && p.Prev == nil {
		return nil
	}
	return p
}

type response struct {
	Success    bool                    `json:"success"`
	Data       any                     `json:"data,omitempty"`
	Count      *int                    `json:"count,omitempty"`
	Pagination *Pagination             `json:"pagination,omitempty"`
	Message    string                  `json:"message,omitempty"`
	Errors     []validation.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondJSON sends a success envelope with a single resource
func respondJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, response{Success: true, Data: data})
}

// respondList sends a success envelope for a collection. Count is the length
// of the returned page, not the total match count.
func respondList(w http.ResponseWriter, status int, data any, count int, pagination *Pagination) {
	writeJSON(w, status, response{
		Success:    true,
		Data:       data,
		Count:      &count,
		Pagination: pagination,
	})
}

// respondMessage sends a success envelope with only a message (deletes)
func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Success: true, Message: message})
}

// respondJSONError sends an error envelope with a human-readable message
func respondJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Success: false, Message: message})
}

// respondValidationError sends a 400 with per-field messages extracted from
// a validator error.
func respondValidationError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, response{
		Success: false,
		Message: "Validation failed",
		Errors:  validation.FieldErrors(err),
	})
}
