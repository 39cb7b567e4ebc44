package calendar

import (
	"fmt"
	"testing"
	"time"
)

func TestUpcoming(t *testing.T) {
	t.Parallel()

	now := at("2025-06-15T10:00:00")
	events := []Event{
		{ID: "past", Start: at("2025-06-14T10:00:00"), Category: CategoryWork},
		{ID: "later", Start: at("2025-06-20T08:00:00"), Category: CategoryWork},
		{ID: "now", Start: now, Category: CategoryHealth},
		{ID: "soon", Start: at("2025-06-15T11:00:00"), Category: CategoryWork},
		{ID: "earlier-today", Start: at("2025-06-15T09:59:59"), Category: CategoryWork},
	}

	got := Upcoming(events, now, CategoryAll)
	want := []string{"now", "soon", "later"}
	if len(got) != len(want) {
		t.Fatalf("expected %d upcoming events, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, got[i].ID, want[i])
		}
		if got[i].Start.Before(now) {
			t.Fatalf("upcoming contains past event %s", got[i].ID)
		}
		if i > 0 && got[i].Start.Before(got[i-1].Start) {
			t.Fatalf("upcoming not ascending at %d", i)
		}
	}

	work := Upcoming(events, now, CategoryWork)
	if len(work) != 2 || work[0].ID != "soon" {
		t.Fatalf("unexpected filtered upcoming: %+v", work)
	}
	if events[0].ID != "past" || len(events) != 5 {
		t.Fatalf("source slice was modified")
	}
}

func TestCountByStatus(t *testing.T) {
	t.Parallel()

	now := at("2025-06-15T10:00:00")
	events := []Event{
		{Start: at("2025-06-15T09:00:00"), Category: CategoryWork},
		{Start: at("2025-06-14T23:59:59"), Category: CategoryWork},
		{Start: at("2025-06-16T00:00:01"), Category: CategoryHealth},
		{Start: at("2025-06-15T18:00:00"), Category: CategoryHealth},
	}

	all := CountByStatus(now, events, CategoryAll)
	if all != (Stats{Past: 1, Today: 2, Future: 1, Total: 4}) {
		t.Fatalf("unexpected stats: %+v", all)
	}

	health := CountByStatus(now, events, CategoryHealth)
	if health != (Stats{Past: 0, Today: 1, Future: 1, Total: 4}) {
		t.Fatalf("unexpected filtered stats: %+v", health)
	}
}

func TestCountSeriesByStatus(t *testing.T) {
	t.Parallel()

	now := at("2025-06-15T10:00:00")
	stored := []Event{
		{ID: "weekly", Start: at("2025-01-06T09:00:00"), Recurrence: "FREQ=WEEKLY", Category: CategoryWork},
		{ID: "daily", Start: at("2025-06-01T07:00:00"), Recurrence: "FREQ=DAILY", Category: CategoryHealth},
		{ID: "ended", Start: at("2025-01-06T09:00:00"), Recurrence: "FREQ=WEEKLY;COUNT=2", Category: CategoryWork},
		{ID: "single", Start: at("2025-06-15T18:00:00"), Category: CategoryWork},
	}
	occurrences := []Event{
		{ID: "weekly", OccurrenceOf: "weekly", Start: at("2025-06-16T09:00:00"), Category: CategoryWork},
		{ID: "weekly", OccurrenceOf: "weekly", Start: at("2025-06-23T09:00:00"), Category: CategoryWork},
		{ID: "daily", OccurrenceOf: "daily", Start: at("2025-06-15T07:00:00"), Category: CategoryHealth},
		{ID: "daily", OccurrenceOf: "daily", Start: at("2025-06-16T07:00:00"), Category: CategoryHealth},
		stored[3],
	}

	got := CountSeriesByStatus(now, stored, occurrences, CategoryAll)
	if got != (Stats{Past: 1, Today: 2, Future: 1, Total: 4}) {
		t.Fatalf("unexpected stats: %+v", got)
	}

	health := CountSeriesByStatus(now, stored, occurrences, CategoryHealth)
	if health != (Stats{Today: 1, Total: 4}) {
		t.Fatalf("unexpected filtered stats: %+v", health)
	}

	if plain := CountSeriesByStatus(now, stored, nil, CategoryAll); plain != CountByStatus(now, stored, CategoryAll) {
		t.Fatalf("without occurrences the counts must match CountByStatus, got %+v", plain)
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	items := make([]int, 14)
	for i := range items {
		items[i] = i
	}

	first := Paginate(items, 1, DefaultPageSize)
	if len(first.Items) != 6 || first.TotalPages != 3 || first.HasPrevious() || !first.HasNext() {
		t.Fatalf("unexpected first page: %+v", first)
	}
	last := Paginate(items, 3, DefaultPageSize)
	if len(last.Items) != 2 || last.Items[0] != 12 || last.HasNext() {
		t.Fatalf("unexpected last page: %+v", last)
	}
	clamped := Paginate(items, 9, DefaultPageSize)
	if clamped.Number != 3 {
		t.Fatalf("expected clamp to page 3, got %d", clamped.Number)
	}
	empty := Paginate([]int(nil), 2, DefaultPageSize)
	if empty.Number != 1 || empty.TotalPages != 1 || len(empty.Items) != 0 {
		t.Fatalf("unexpected empty page: %+v", empty)
	}
}

func TestPagerResets(t *testing.T) {
	t.Parallel()

	items := make([]string, 20)
	for i := range items {
		items[i] = fmt.Sprintf("item-%d", i)
	}

	p := NewPager(0)
	if p.Size() != DefaultPageSize {
		t.Fatalf("expected default page size, got %d", p.Size())
	}

	Apply(p, items, CategoryAll)
	p.SetPage(3)
	if page := Apply(p, items, CategoryAll); page.Number != 3 {
		t.Fatalf("expected page to stay on 3, got %d", page.Number)
	}

	if page := Apply(p, items[:19], CategoryAll); page.Number != 1 {
		t.Fatalf("expected reset after length change, got %d", page.Number)
	}

	p.SetPage(2)
	if page := Apply(p, items[:19], CategoryWork); page.Number != 1 {
		t.Fatalf("expected reset after category change, got %d", page.Number)
	}
}

func TestUpcomingPropertyAcrossNow(t *testing.T) {
	t.Parallel()

	base := at("2025-01-01T00:00:00")
	events := make([]Event, 0, 50)
	for i := 0; i < 50; i++ {
		events = append(events, Event{
			ID:       fmt.Sprintf("e%d", i),
			Start:    base.Add(time.Duration((i*37)%50) * 7 * time.Hour),
			Category: Categories()[i%4],
		})
	}

	for step := 0; step < 60; step++ {
		now := base.Add(time.Duration(step) * 6 * time.Hour)
		got := Upcoming(events, now, CategoryAll)
		for i, e := range got {
			if e.Start.Before(now) {
				t.Fatalf("now=%s: event %s starts before now", now, e.ID)
			}
			if i > 0 && e.Start.Before(got[i-1].Start) {
				t.Fatalf("now=%s: not ascending at %d", now, i)
			}
		}
	}
}
