package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhub/studyhub-api/internal/models"
)

func newEventRouter(events *fakeEventRepo, tasks *fakeTaskRepo) *mux.Router {
	r := mux.NewRouter()
	NewEventHandler(events, tasks).RegisterRoutes(r.PathPrefix("/calendar").Subrouter())
	return r
}

func seedEvent(repo *fakeEventRepo, userID uuid.UUID, title string, start, end time.Time) *models.Event {
	event := &models.Event{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		StartDate: start,
		EndDate:   end,
		EventType: models.EventTypeClass,
		Color:     models.DefaultEventColor,
	}
	repo.events[event.ID] = event
	return event
}

func TestCreateEventDefaults(t *testing.T) {
	t.Parallel()
	events := newFakeEventRepo()
	router := newEventRouter(events, newFakeTaskRepo())
	user := testUser()

	start := time.Now().Add(time.Hour)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, asUser(newTestRequest(http.MethodPost, "/calendar", map[string]any{
		"title":      "Lecture",
		"start_date": start.Format(time.RFC3339),
		"end_date":   start.Add(time.Hour).Format(time.RFC3339),
	}), user))

	require.Equal(t, http.StatusCreated, w.Code)
	var body struct {
		Data models.Event `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, models.DefaultEventColor, body.Data.Color)
	assert.Equal(t, models.EventTypeOther, body.Data.EventType)
	assert.Equal(t, models.RecurrenceNone, body.Data.Recurrence)
}

func TestCreateEventRejectsInvertedRange(t *testing.T) {
	t.Parallel()
	router := newEventRouter(newFakeEventRepo(), newFakeTaskRepo())

	start := time.Now().Add(2 * time.Hour)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, asUser(newTestRequest(http.MethodPost, "/calendar", map[string]any{
		"title":      "Backwards",
		"start_date": start.Format(time.RFC3339),
		"end_date":   start.Add(-time.Hour).Format(time.RFC3339),
	}), testUser()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateEventRelatedTaskChecks(t *testing.T) {
	t.Parallel()
	events := newFakeEventRepo()
	tasks := newFakeTaskRepo()
	router := newEventRouter(events, tasks)
	owner := testUser()
	otherTask := seedTask(tasks, uuid.New(), nil)
	ownTask := seedTask(tasks, owner.ID, nil)

	start := time.Now().Add(time.Hour)
	post := func(taskID uuid.UUID) int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, asUser(newTestRequest(http.MethodPost, "/calendar", map[string]any{
			"title":        "Study session",
			"start_date":   start.Format(time.RFC3339),
			"end_date":     start.Add(time.Hour).Format(time.RFC3339),
			"related_task": taskID.String(),
		}), owner))
		return w.Code
	}

	assert.Equal(t, http.StatusNotFound, post(uuid.New()), "missing task")
	assert.Equal(t, http.StatusForbidden, post(otherTask.ID), "unowned task")
	assert.Equal(t, http.StatusCreated, post(ownTask.ID), "owned task")
}

func TestDayViewOverlap(t *testing.T) {
	t.Parallel()
	events := newFakeEventRepo()
	router := newEventRouter(events, newFakeTaskRepo())
	owner := testUser()

	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	seedEvent(events, owner.ID, "A", at(10, 0), at(11, 0))
	seedEvent(events, owner.ID, "B", at(10, 30), at(12, 0))
	// C spans the whole day and beyond.
	seedEvent(events, owner.ID, "C", day.Add(-15*time.Hour), day.Add(37*time.Hour))
	seedEvent(events, owner.ID, "day before", day.Add(-10*time.Hour), day.Add(-2*time.Hour))
	seedEvent(events, owner.ID, "day after", day.Add(26*time.Hour), day.Add(28*time.Hour))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, asUser(httptest.NewRequest(http.MethodGet, "/calendar/day/2026-04-10", nil), owner))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data  []*models.Event `json:"data"`
		Count int             `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Equal(t, 3, body.Count)

	var titles []string
	for _, event := range body.Data {
		titles = append(titles, event.Title)
	}
	assert.Equal(t, []string{"C", "A", "B"}, titles, "sorted by start date")
}

func TestDayViewRejectsBadDate(t *testing.T) {
	t.Parallel()
	router := newEventRouter(newFakeEventRepo(), newFakeTaskRepo())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, asUser(httptest.NewRequest(http.MethodGet, "/calendar/day/april-10", nil), testUser()))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEventsWindowFilter(t *testing.T) {
	t.Parallel()
	events := newFakeEventRepo()
	router := newEventRouter(events, newFakeTaskRepo())
	owner := testUser()

	march := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedEvent(events, owner.ID, "in window", march.AddDate(0, 0, 10), march.AddDate(0, 0, 10).Add(time.Hour))
	seedEvent(events, owner.ID, "straddles start", march.AddDate(0, 0, -1), march.AddDate(0, 0, 2))
	seedEvent(events, owner.ID, "outside", march.AddDate(0, 1, 5), march.AddDate(0, 1, 5).Add(time.Hour))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, asUser(httptest.NewRequest(http.MethodGet, "/calendar?startDate=2026-03-01&endDate=2026-03-31", nil), owner))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
}

func TestUpdateEventOwnership(t *testing.T) {
	t.Parallel()
	events := newFakeEventRepo()
	router := newEventRouter(events, newFakeTaskRepo())
	owner := testUser()
	event := seedEvent(events, owner.ID, "Seminar", time.Now(), time.Now().Add(time.Hour))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, asUser(newTestRequest(http.MethodPut, "/calendar/"+event.ID.String(), map[string]any{
		"title": "Seminar (moved)",
	}), testUser()))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, asUser(newTestRequest(http.MethodPut, "/calendar/"+event.ID.String(), map[string]any{
		"title": "Seminar (moved)",
	}), owner))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Seminar (moved)", events.events[event.ID].Title)
}
