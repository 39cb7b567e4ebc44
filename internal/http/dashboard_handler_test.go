package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/example/knowledge-dashboard/internal/calendar"
)

// countingStore records collaborator calls made by the calendar facade.
type countingStore struct {
	mu        sync.Mutex
	events    []calendar.Event
	deletes   int
	deleteErr error
}

func (s *countingStore) ListEvents(context.Context) ([]calendar.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]calendar.Event(nil), s.events...), nil
}

func (s *countingStore) CreateEvent(_ context.Context, d calendar.Draft) (calendar.Event, error) {
	return calendar.Event{ID: "new", Title: d.Title, Start: d.Start, Category: d.Category}, nil
}

func (s *countingStore) UpdateEvent(_ context.Context, id string, d calendar.Draft) (calendar.Event, error) {
	return calendar.Event{ID: id, Title: d.Title, Start: d.Start, Category: d.Category}, nil
}

func (s *countingStore) DeleteEvent(context.Context, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	return s.deleteErr
}

func TestDashboardHandlers(t *testing.T) {
	t.Parallel()

	t.Run("navigation keeps one reference per view", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/dashboard/calendar/navigate", map[string]string{"direction": "date", "date": "2025-01-15"})
		expectStatus(t, rec, http.StatusOK)
		for i := 0; i < 2; i++ {
			rec = env.do(t, http.MethodPost, "/api/dashboard/calendar/navigate", map[string]string{"direction": "next"})
			expectStatus(t, rec, http.StatusOK)
		}
		snap := decodeBody[snapshotDTO](t, rec)
		if snap.Month == nil || snap.Month.Year != 2025 || snap.Month.Month != 3 {
			t.Fatalf("expected March 2025, got %+v", snap.Month)
		}
		if snap.References["month"] != "2025-03-15" || snap.References["week"] != "2025-06-15" {
			t.Fatalf("unexpected references: %+v", snap.References)
		}

		rec = env.do(t, http.MethodPut, "/api/dashboard/calendar/view", map[string]string{"view": "week"})
		expectStatus(t, rec, http.StatusOK)
		snap = decodeBody[snapshotDTO](t, rec)
		if snap.View != "week" || snap.ViewLabel != "Semana" || snap.Week == nil || snap.Month != nil {
			t.Fatalf("unexpected week snapshot: view=%s", snap.View)
		}

		rec = env.do(t, http.MethodPost, "/api/dashboard/calendar/navigate", map[string]string{"direction": "today"})
		if snap := decodeBody[snapshotDTO](t, rec); snap.References["week"] != "2025-06-15" {
			t.Fatalf("expected today, got %+v", snap.References)
		}

		rec = env.do(t, http.MethodPost, "/api/dashboard/calendar/navigate", map[string]string{"direction": "sideways"})
		expectStatus(t, rec, http.StatusBadRequest)
		rec = env.do(t, http.MethodPut, "/api/dashboard/calendar/view", map[string]string{"view": "year"})
		expectStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("submit keeps the modal open on failure", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/dashboard/calendar/submit", map[string]any{"title": "x", "start_date": "2025-06-16T09:00:00"}, asAdmin())
		expectStatus(t, rec, http.StatusConflict)

		rec = env.do(t, http.MethodPost, "/api/dashboard/calendar/modal", map[string]string{"mode": "create"})
		expectStatus(t, rec, http.StatusOK)
		if snap := decodeBody[snapshotDTO](t, rec); snap.Modal != "create" || snap.Form.Category != "TRABAJO" {
			t.Fatalf("unexpected modal state: %+v", snap.Form)
		}

		rec = env.do(t, http.MethodPost, "/api/dashboard/calendar/submit", map[string]any{"title": " ", "start_date": "2025-06-16T09:00:00"}, asAdmin())
		expectStatus(t, rec, http.StatusUnprocessableEntity)

		rec = env.do(t, http.MethodPost, "/api/dashboard/calendar/submit", map[string]any{"title": "Visita", "start_date": "2025-06-16T09:00:00"})
		expectStatus(t, rec, http.StatusForbidden)

		rec = env.do(t, http.MethodGet, "/api/dashboard/calendar", nil)
		snap := decodeBody[snapshotDTO](t, rec)
		if snap.Modal != "create" || snap.Form.Title != "Visita" {
			t.Fatalf("expected modal to stay open with submitted form, got %s %+v", snap.Modal, snap.Form)
		}

		rec = env.do(t, http.MethodPost, "/api/dashboard/calendar/submit", map[string]any{"title": "Visita", "start_date": "2025-06-16T09:00:00", "category": "salud"}, asAdmin())
		expectStatus(t, rec, http.StatusOK)
		snap = decodeBody[snapshotDTO](t, rec)
		if snap.Modal != "none" || snap.Upcoming.TotalItems != 1 || snap.Stats.Future != 1 {
			t.Fatalf("unexpected snapshot after submit: modal=%s upcoming=%+v stats=%+v", snap.Modal, snap.Upcoming, snap.Stats)
		}
		if snap.Upcoming.Items[0].Category != "SALUD" {
			t.Fatalf("unexpected category %q", snap.Upcoming.Items[0].Category)
		}
	})

	t.Run("edit modal opens for loaded events only", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		created := env.createEvent(t, map[string]any{"title": "Editar", "start_date": "2025-06-18T11:00:00"})

		rec := env.do(t, http.MethodPost, "/api/dashboard/calendar/modal", map[string]string{"mode": "edit", "event_id": created.ID})
		expectStatus(t, rec, http.StatusNotFound)

		rec = env.do(t, http.MethodPost, "/api/dashboard/calendar/reload", nil)
		expectStatus(t, rec, http.StatusOK)

		rec = env.do(t, http.MethodPost, "/api/dashboard/calendar/modal", map[string]string{"mode": "edit", "event_id": created.ID})
		expectStatus(t, rec, http.StatusOK)
		snap := decodeBody[snapshotDTO](t, rec)
		if snap.Modal != "edit" || snap.Form.ID != created.ID || snap.Form.StartDate != "2025-06-18T11:00:00" {
			t.Fatalf("unexpected edit form: %+v", snap.Form)
		}

		rec = env.do(t, http.MethodPost, "/api/dashboard/calendar/submit", map[string]any{"title": "Editado", "start_date": "2025-06-19T11:00:00"}, asAdmin())
		expectStatus(t, rec, http.StatusOK)
		stored, err := env.events.GetEvent(context.Background(), PrincipalOrReadOnly(context.Background()), created.ID)
		if err != nil || stored.Title != "Editado" {
			t.Fatalf("expected stored update, got %+v (%v)", stored, err)
		}

		rec = env.do(t, http.MethodDelete, "/api/dashboard/calendar/modal", nil)
		expectStatus(t, rec, http.StatusOK)
		if snap := decodeBody[snapshotDTO](t, rec); snap.Modal != "none" {
			t.Fatalf("expected closed modal, got %s", snap.Modal)
		}
	})

	t.Run("category and page selection", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		rec := env.do(t, http.MethodPut, "/api/dashboard/calendar/category", map[string]string{"category": "estudio"})
		expectStatus(t, rec, http.StatusOK)
		snap := decodeBody[snapshotDTO](t, rec)
		if snap.Category != "ESTUDIO" || len(snap.Categories) != 5 || len(snap.Views) != 3 {
			t.Fatalf("unexpected snapshot: category=%s categories=%d views=%d", snap.Category, len(snap.Categories), len(snap.Views))
		}

		rec = env.do(t, http.MethodPut, "/api/dashboard/calendar/category", map[string]string{"category": "OCIO"})
		expectStatus(t, rec, http.StatusBadRequest)

		rec = env.do(t, http.MethodPut, "/api/dashboard/calendar/page", map[string]int{"page": 4})
		expectStatus(t, rec, http.StatusOK)
		if snap := decodeBody[snapshotDTO](t, rec); snap.Upcoming.Page != 1 {
			t.Fatalf("expected clamped page, got %d", snap.Upcoming.Page)
		}
	})

	t.Run("declined delete makes no collaborator call", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2025, time.June, 16, 9, 0, 0, 0, time.UTC)
		store := &countingStore{events: []calendar.Event{{ID: "e1", Title: "Cita", Start: start, Category: calendar.CategoryHealth}}}
		view := calendar.NewCalendarView(store, start.Add(-time.Hour), calendar.WithLocation(time.UTC))
		if err := view.Load(context.Background()); err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		handler := NewRouter(RouterConfig{Dashboard: NewDashboardHandler(view, time.UTC, discardLogger())})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/dashboard/calendar/events/e1", nil))
		expectStatus(t, rec, http.StatusPreconditionRequired)
		if store.deletes != 0 || len(view.Events()) != 1 {
			t.Fatalf("declined delete must not touch the store: deletes=%d events=%d", store.deletes, len(view.Events()))
		}

		store.deleteErr = errors.New("disk on fire")
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/dashboard/calendar/events/e1?confirm=true", nil))
		expectStatus(t, rec, http.StatusInternalServerError)
		if store.deletes != 1 || len(view.Events()) != 1 {
			t.Fatalf("failed delete must keep the event: deletes=%d events=%d", store.deletes, len(view.Events()))
		}

		store.deleteErr = nil
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/dashboard/calendar/events/e1?confirm=true", nil))
		expectStatus(t, rec, http.StatusOK)
		if len(view.Events()) != 0 {
			t.Fatalf("confirmed delete must remove the event")
		}
	})
}
