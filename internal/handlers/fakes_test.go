package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/database"
	"github.com/studyhub/studyhub-api/internal/models"
	"github.com/studyhub/studyhub-api/internal/request"
)

// In-memory repositories backing handler tests. They mirror the SQL
// repositories' ordering and filter semantics closely enough for the
// handler-level contracts under test.

type fakeTaskRepo struct {
	tasks map[uuid.UUID]*models.Task
	err   error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*models.Task)}
}

func (f *fakeTaskRepo) Create(_ context.Context, task *models.Task) error {
	if f.err != nil {
		return f.err
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	task, ok := f.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, database.ErrNotFound)
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) sorted(userID uuid.UUID, keep func(*models.Task) bool) []*models.Task {
	var out []*models.Task
	for _, task := range f.tasks {
		if task.UserID == userID && keep(task) {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return models.PriorityRank(out[i].Priority) > models.PriorityRank(out[j].Priority)
	})
	return out
}

func (f *fakeTaskRepo) List(_ context.Context, userID uuid.UUID, filter database.TaskFilter, page database.Page) ([]*models.Task, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	matched := f.sorted(userID, func(task *models.Task) bool {
		if len(filter.Statuses) > 0 {
			ok := false
			for _, s := range filter.Statuses {
				if task.Status == s {
					ok = true
				}
			}
			if !ok {
				return false
			}
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			return false
		}
		if filter.Category != "" && task.Category != filter.Category {
			return false
		}
		if !filter.DueRange.IsZero() {
			if task.DueDate.Before(filter.DueRange.Start) || task.DueDate.After(filter.DueRange.End) {
				return false
			}
		}
		return true
	})
	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeTaskRepo) Upcoming(_ context.Context, userID uuid.UUID, now time.Time) ([]*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	horizon := now.AddDate(0, 0, 7)
	return f.sorted(userID, func(task *models.Task) bool {
		if task.Status != models.TaskStatusPending && task.Status != models.TaskStatusInProgress {
			return false
		}
		return !task.DueDate.Before(now) && !task.DueDate.After(horizon)
	}), nil
}

func (f *fakeTaskRepo) Overdue(_ context.Context, userID uuid.UUID, now time.Time) ([]*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(userID, func(task *models.Task) bool {
		return task.DueDate.Before(now) && task.Status != models.TaskStatusCompleted
	}), nil
}

func (f *fakeTaskRepo) Update(_ context.Context, task *models.Task) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.tasks[task.ID]; !ok {
		return fmt.Errorf("task %s: %w", task.ID, database.ErrNotFound)
	}
	task.UpdatedAt = time.Now()
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, database.ErrNotFound)
	}
	delete(f.tasks, id)
	return nil
}

type fakeEventRepo struct {
	events map[uuid.UUID]*models.Event
	err    error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uuid.UUID]*models.Event)}
}

func (f *fakeEventRepo) Create(_ context.Context, event *models.Event) error {
	if f.err != nil {
		return f.err
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	event, ok := f.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, database.ErrNotFound)
	}
	copied := *event
	return &copied, nil
}

func (f *fakeEventRepo) sorted(userID uuid.UUID, keep func(*models.Event) bool) []*models.Event {
	var out []*models.Event
	for _, event := range f.events {
		if event.UserID == userID && keep(event) {
			out = append(out, event)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}

func (f *fakeEventRepo) List(_ context.Context, userID uuid.UUID, filter database.EventFilter) ([]*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(userID, func(event *models.Event) bool {
		if filter.EventType != "" && event.EventType != filter.EventType {
			return false
		}
		if !filter.Window.IsZero() && !event.Overlaps(filter.Window.Start, filter.Window.End) {
			return false
		}
		return true
	}), nil
}

func (f *fakeEventRepo) Day(_ context.Context, userID uuid.UUID, day time.Time) ([]*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	dayEnd := day.Add(24 * time.Hour)
	return f.sorted(userID, func(event *models.Event) bool {
		return event.StartDate.Before(dayEnd) && !event.EndDate.Before(day)
	}), nil
}

func (f *fakeEventRepo) Update(_ context.Context, event *models.Event) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.events[event.ID]; !ok {
		return fmt.Errorf("event %s: %w", event.ID, database.ErrNotFound)
	}
	event.UpdatedAt = time.Now()
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.events[id]; !ok {
		return fmt.Errorf("event %s: %w", id, database.ErrNotFound)
	}
	delete(f.events, id)
	return nil
}

type fakeNoteRepo struct {
	notes map[uuid.UUID]*models.Note
	err   error
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[uuid.UUID]*models.Note)}
}

func (f *fakeNoteRepo) Create(_ context.Context, note *models.Note) error {
	if f.err != nil {
		return f.err
	}
	note.CreatedAt = time.Now()
	note.UpdatedAt = note.CreatedAt
	f.notes[note.ID] = note
	return nil
}

func (f *fakeNoteRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	note, ok := f.notes[id]
	if !ok {
		return nil, fmt.Errorf("note %s: %w", id, database.ErrNotFound)
	}
	copied := *note
	return &copied, nil
}

func (f *fakeNoteRepo) List(_ context.Context, userID uuid.UUID, filter database.NoteFilter, page database.Page) ([]*models.Note, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var matched []*models.Note
	for _, note := range f.notes {
		if note.UserID != userID {
			continue
		}
		if filter.IsJournal != nil && note.IsJournal != *filter.IsJournal {
			continue
		}
		if len(filter.Tags) > 0 {
			overlap := false
			for _, want := range filter.Tags {
				for _, have := range note.Tags {
					if want == have {
						overlap = true
					}
				}
			}
			if !overlap {
				continue
			}
		}
		matched = append(matched, note)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeNoteRepo) Journal(_ context.Context, userID uuid.UUID, filter database.JournalFilter, page database.Page) ([]*models.Note, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	var matched []*models.Note
	for _, note := range f.notes {
		if note.UserID != userID || !note.IsJournal || note.JournalDate == nil {
			continue
		}
		if !filter.Range.IsZero() {
			if note.JournalDate.Before(filter.Range.Start) || note.JournalDate.After(filter.Range.End) {
				continue
			}
		}
		matched = append(matched, note)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].JournalDate.After(*matched[j].JournalDate)
	})
	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeNoteRepo) Update(_ context.Context, note *models.Note) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.notes[note.ID]; !ok {
		return fmt.Errorf("note %s: %w", note.ID, database.ErrNotFound)
	}
	note.UpdatedAt = time.Now()
	f.notes[note.ID] = note
	return nil
}

func (f *fakeNoteRepo) Delete(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.notes[id]; !ok {
		return fmt.Errorf("note %s: %w", id, database.ErrNotFound)
	}
	delete(f.notes, id)
	return nil
}

type fakePomodoroRepo struct {
	pomodoros map[uuid.UUID]*models.Pomodoro
	sessions  map[string]*models.PomodoroSession
	err       error
}

func newFakePomodoroRepo() *fakePomodoroRepo {
	return &fakePomodoroRepo{
		pomodoros: make(map[uuid.UUID]*models.Pomodoro),
		sessions:  make(map[string]*models.PomodoroSession),
	}
}

func (f *fakePomodoroRepo) sessionFor(userID uuid.UUID, day time.Time) *models.PomodoroSession {
	key := userID.String() + day.Format("2006-01-02")
	s, ok := f.sessions[key]
	if !ok {
		s = &models.PomodoroSession{ID: uuid.New(), UserID: userID, Date: day}
		f.sessions[key] = s
	}
	return s
}

func (f *fakePomodoroRepo) Start(_ context.Context, pomodoro *models.Pomodoro) error {
	if f.err != nil {
		return f.err
	}
	f.pomodoros[pomodoro.ID] = pomodoro
	f.sessionFor(pomodoro.UserID, models.SessionDay(pomodoro.StartTime)).TotalSessions++
	return nil
}

func (f *fakePomodoroRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Pomodoro, error) {
	if f.err != nil {
		return nil, f.err
	}
	pomodoro, ok := f.pomodoros[id]
	if !ok {
		return nil, fmt.Errorf("pomodoro %s: %w", id, database.ErrNotFound)
	}
	copied := *pomodoro
	return &copied, nil
}

func (f *fakePomodoroRepo) Complete(_ context.Context, pomodoro *models.Pomodoro) error {
	if f.err != nil {
		return f.err
	}
	stored := f.pomodoros[pomodoro.ID]
	if stored == nil {
		return fmt.Errorf("pomodoro %s: %w", pomodoro.ID, database.ErrNotFound)
	}
	if stored.IsTerminal() {
		return fmt.Errorf("pomodoro %s already finished: %w", pomodoro.ID, database.ErrInvalidState)
	}
	now := time.Now()
	stored.EndTime = &now
	stored.Status = models.PomodoroStatusCompleted
	*pomodoro = *stored
	session := f.sessionFor(stored.UserID, models.SessionDay(now))
	session.CompletedSessions++
	session.TotalFocusTime += stored.Duration
	return nil
}

func (f *fakePomodoroRepo) Interrupt(_ context.Context, pomodoro *models.Pomodoro) error {
	if f.err != nil {
		return f.err
	}
	stored := f.pomodoros[pomodoro.ID]
	if stored == nil {
		return fmt.Errorf("pomodoro %s: %w", pomodoro.ID, database.ErrNotFound)
	}
	if stored.IsTerminal() {
		return fmt.Errorf("pomodoro %s already finished: %w", pomodoro.ID, database.ErrInvalidState)
	}
	now := time.Now()
	stored.EndTime = &now
	stored.Status = models.PomodoroStatusInterrupted
	*pomodoro = *stored
	return nil
}

func (f *fakePomodoroRepo) Recent(_ context.Context, userID uuid.UUID, limit int) ([]*models.Pomodoro, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Pomodoro
	for _, pomodoro := range f.pomodoros {
		if pomodoro.UserID == userID {
			out = append(out, pomodoro)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePomodoroRepo) SessionsInRange(_ context.Context, userID uuid.UUID, start, end time.Time) ([]*models.PomodoroSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.PomodoroSession
	for _, session := range f.sessions {
		if session.UserID != userID {
			continue
		}
		if session.Date.Before(start) || session.Date.After(end) {
			continue
		}
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// asUser attaches an authenticated user to the request, standing in for the
// auth middleware.
func asUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(request.WithUser(r.Context(), user))
}

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "student@example.com", Subject: "sub-" + uuid.NewString()}
}
