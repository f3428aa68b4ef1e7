package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/studyhub/studyhub-api/internal/database"
)

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body
}

func TestRespondJSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSON(w, http.StatusCreated, map[string]string{"title": "hello"})

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
	}

	body := decodeBody(t, resp)
	if success, ok := body["success"].(bool); !ok || !success {
		t.Error("Expected success to be true")
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatal("Expected data to be present")
	}
	if data["title"] != "hello" {
		t.Errorf("Expected title 'hello', got %v", data["title"])
	}
	if _, ok := body["count"]; ok {
		t.Error("Single-resource response must not carry count")
	}
}

func TestRespondList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		items     []string
		total     int
		page      database.Page
		wantNext  bool
		wantPrev  bool
		wantCount float64
	}{
		{"single page", []string{"a", "b"}, 2, database.Page{Page: 1, Limit: 10}, false, false, 2},
		{"has next", []string{"a", "b"}, 25, database.Page{Page: 1, Limit: 10}, true, false, 2},
		{"middle page", []string{"a"}, 25, database.Page{Page: 2, Limit: 10}, true, true, 1},
		{"last page", []string{"a"}, 25, database.Page{Page: 3, Limit: 10}, false, true, 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			respondList(w, http.StatusOK, tt.items, len(tt.items), NewPagination(tt.page, tt.total))

			resp := w.Result()
			defer resp.Body.Close()
			body := decodeBody(t, resp)

			if body["count"] != tt.wantCount {
				t.Errorf("count = %v, want %v", body["count"], tt.wantCount)
			}

			pag, hasPag := body["pagination"].(map[string]any)
			if !tt.wantNext && !tt.wantPrev {
				if hasPag {
					t.Error("Expected no pagination block")
				}
				return
			}
			if !hasPag {
				t.Fatal("Expected pagination block")
			}
			if _, ok := pag["next"]; ok != tt.wantNext {
				t.Errorf("next present = %v, want %v", ok, tt.wantNext)
			}
			if _, ok := pag["prev"]; ok != tt.wantPrev {
				t.Errorf("prev present = %v, want %v", ok, tt.wantPrev)
			}
		})
	}
}

func TestRespondJSONError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSONError(w, http.StatusNotFound, "Task not found")

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if success, ok := body["success"].(bool); !ok || success {
		t.Error("Expected success to be false")
	}
	if body["message"] != "Task not found" {
		t.Errorf("message = %v, want 'Task not found'", body["message"])
	}
}

func TestNewPaginationExactBoundary(t *testing.T) {
	t.Parallel()

	// 20 rows at limit 10: page 2 is the last page, no next.
	p := NewPagination(database.Page{Page: 2, Limit: 10}, 20)
	if p == nil {
		t.Fatal("Expected pagination with prev")
	}
	if p.Next != nil {
		t.Errorf("Next = %+v, want nil", p.Next)
	}
	if p.Prev == nil || p.Prev.Page != 1 || p.Prev.Limit != 10 {
		t.Errorf("Prev = %+v, want page 1 limit 10", p.Prev)
	}
}

// Test helper to create a test request with body
func newTestRequest(method, path string, body any) *http.Request {
	var bodyReader *bytes.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	} else {
		bodyReader = bytes.NewReader(nil)
	}
	return httptest.NewRequest(method, path, bodyReader)
}
