package http

import (
	"net/http"
	"testing"
)

func TestCalendarHandlers(t *testing.T) {
	t.Parallel()

	t.Run("day view places the event in its hour slot once", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		created := env.createEvent(t, map[string]any{"title": "Revisión", "start_date": "2025-03-10T14:30:00"})

		rec := env.do(t, http.MethodGet, "/api/calendar/day?date=2025-03-10", nil)
		expectStatus(t, rec, http.StatusOK)
		resp := decodeBody[renderResponse](t, rec)
		if resp.Day == nil || resp.Month != nil || resp.Week != nil {
			t.Fatalf("expected only the day render: %+v", resp)
		}
		if len(resp.Day.Slots) != 24 {
			t.Fatalf("expected 24 slots, got %d", len(resp.Day.Slots))
		}
		seen := 0
		for _, slot := range resp.Day.Slots {
			for _, e := range slot.Events {
				if e.ID != created.ID {
					continue
				}
				seen++
				if slot.Hour != 14 {
					t.Fatalf("event placed in hour %d", slot.Hour)
				}
			}
		}
		if seen != 1 {
			t.Fatalf("expected event exactly once, saw %d", seen)
		}
		if resp.Day.Events[0].Status != "past" {
			t.Fatalf("expected past status, got %q", resp.Day.Events[0].Status)
		}
	})

	t.Run("month and week grids start on Sunday", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.createEvent(t, map[string]any{"title": "Revisión", "start_date": "2025-03-10T14:30:00"})

		rec := env.do(t, http.MethodGet, "/api/calendar/month?date=2025-03-10", nil)
		expectStatus(t, rec, http.StatusOK)
		month := decodeBody[renderResponse](t, rec).Month
		if month == nil || month.Month != 3 || len(month.Cells)%7 != 0 || month.Weeks != len(month.Cells)/7 {
			t.Fatalf("unexpected month render: %+v", month)
		}
		if month.Cells[0].Date != "2025-02-23" {
			t.Fatalf("expected grid to open on Sunday 2025-02-23, got %s", month.Cells[0].Date)
		}
		found := false
		for _, c := range month.Cells {
			if c.Date == "2025-03-10" && len(c.Events) == 1 {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected the event on 2025-03-10")
		}

		rec = env.do(t, http.MethodGet, "/api/calendar/week?date=2025-03-12", nil)
		expectStatus(t, rec, http.StatusOK)
		week := decodeBody[renderResponse](t, rec).Week
		if week == nil || week.Start != "2025-03-09" || week.End != "2025-03-15" || len(week.Days) != 7 {
			t.Fatalf("unexpected week render: %+v", week)
		}
	})

	t.Run("upcoming expands recurrences and paginates", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.createEvent(t, map[string]any{"title": "Pasado", "start_date": "2025-06-14T23:59:59"})
		env.createEvent(t, map[string]any{"title": "Diario", "start_date": "2025-06-16T08:00:00", "recurrence": "FREQ=DAILY;COUNT=3"})

		rec := env.do(t, http.MethodGet, "/api/calendar/upcoming", nil)
		expectStatus(t, rec, http.StatusOK)
		page := decodeBody[upcomingResponse](t, rec).Upcoming
		if page.TotalItems != 3 || len(page.Items) != 2 || !page.HasNext || page.HasPrevious {
			t.Fatalf("unexpected first page: %+v", page)
		}
		if page.Items[0].StartDate != "2025-06-16T08:00:00Z" || page.Items[1].StartDate != "2025-06-17T08:00:00Z" {
			t.Fatalf("unexpected order: %+v", page.Items)
		}
		if page.Items[0].OccurrenceOf == "" || page.Items[0].DaysUntil != 1 {
			t.Fatalf("expected annotated occurrence, got %+v", page.Items[0])
		}

		rec = env.do(t, http.MethodGet, "/api/calendar/upcoming?page=2", nil)
		page = decodeBody[upcomingResponse](t, rec).Upcoming
		if page.Page != 2 || len(page.Items) != 1 || page.HasNext {
			t.Fatalf("unexpected second page: %+v", page)
		}

		rec = env.do(t, http.MethodGet, "/api/calendar/upcoming?category=SALUD", nil)
		if page := decodeBody[upcomingResponse](t, rec).Upcoming; page.TotalItems != 0 || page.TotalPages != 1 {
			t.Fatalf("expected one empty page, got %+v", page)
		}

		rec = env.do(t, http.MethodGet, "/api/calendar/upcoming?page=two", nil)
		expectStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("stats classify stored events", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.createEvent(t, map[string]any{"title": "Ayer", "start_date": "2025-06-14T23:59:59"})
		env.createEvent(t, map[string]any{"title": "Hoy", "start_date": "2025-06-15T09:00:00", "category": "SALUD"})
		env.createEvent(t, map[string]any{"title": "Mañana", "start_date": "2025-06-16T00:00:01"})

		rec := env.do(t, http.MethodGet, "/api/calendar/stats", nil)
		expectStatus(t, rec, http.StatusOK)
		stats := decodeBody[statsResponse](t, rec).Stats
		if stats.Past != 1 || stats.Today != 1 || stats.Future != 1 || stats.Total != 3 {
			t.Fatalf("unexpected stats: %+v", stats)
		}

		rec = env.do(t, http.MethodGet, "/api/calendar/stats?category=TRABAJO", nil)
		stats = decodeBody[statsResponse](t, rec).Stats
		if stats.Today != 0 || stats.Past != 1 || stats.Future != 1 || stats.Total != 3 {
			t.Fatalf("unexpected filtered stats: %+v", stats)
		}
	})

	t.Run("stats count recurring events by their occurrences", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		env.createEvent(t, map[string]any{"title": "Semanal", "start_date": "2025-01-06T09:00:00", "recurrence": "FREQ=WEEKLY"})
		env.createEvent(t, map[string]any{"title": "Diario", "start_date": "2025-06-01T07:00:00", "recurrence": "FREQ=DAILY"})
		env.createEvent(t, map[string]any{"title": "Terminado", "start_date": "2025-01-06T09:00:00", "recurrence": "FREQ=WEEKLY;COUNT=2"})

		rec := env.do(t, http.MethodGet, "/api/calendar/stats", nil)
		expectStatus(t, rec, http.StatusOK)
		stats := decodeBody[statsResponse](t, rec).Stats
		if stats.Past != 1 || stats.Today != 1 || stats.Future != 1 || stats.Total != 3 {
			t.Fatalf("unexpected stats: %+v", stats)
		}
	})

	t.Run("rejects invalid query values", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		for _, target := range []string{
			"/api/calendar/month?date=10/03/2025",
			"/api/calendar/week?category=OCIO",
			"/api/calendar/stats?category=OCIO",
		} {
			rec := env.do(t, http.MethodGet, target, nil)
			expectStatus(t, rec, http.StatusBadRequest)
		}
		rec := env.do(t, http.MethodPost, "/api/calendar/month", nil)
		expectStatus(t, rec, http.StatusMethodNotAllowed)
	})
}
