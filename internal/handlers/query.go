package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/studyhub/studyhub-api/internal/database"
)

// parsePage reads page/limit query parameters. Values out of range are
// clamped rather than rejected.
func parsePage(r *http.Request) database.Page {
	page := database.Page{}
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			page.Page = parsed
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			page.Limit = parsed
		}
	}
	return page.Clamp()
}

// parseDateParam parses a query parameter as RFC 3339 or plain date. A
// malformed value is a client error, not something to pass to the database.
func parseDateParam(r *http.Request, name string) (time.Time, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, false, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid %s: %q is not a date", name, raw)
}

// parseDateRange reads startDate/endDate into a range. Both ends must be
// present for the range to apply; one without the other is rejected.
func parseDateRange(r *http.Request) (database.DateRange, error) {
	start, hasStart, err := parseDateParam(r, "startDate")
	if err != nil {
		return database.DateRange{}, err
	}
	end, hasEnd, err := parseDateParam(r, "endDate")
	if err != nil {
		return database.DateRange{}, err
	}
	if hasStart != hasEnd {
		return database.DateRange{}, fmt.Errorf("startDate and endDate must be provided together")
	}
	if !hasStart {
		return database.DateRange{}, nil
	}
	if end.Before(start) {
		return database.DateRange{}, fmt.Errorf("endDate must not precede startDate")
	}
	return database.DateRange{Start: start, End: end}, nil
}

// decodeJSONBody decodes a request body, translating body-size overruns and
// malformed JSON into the right client errors. Returns false when a response
// has already been written.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		respondJSONError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
