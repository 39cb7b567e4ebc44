package calendar

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type storeStub struct {
	events []Event
	nextID int

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	creates []Draft
	updates []string
	deletes []string
}

func (s *storeStub) ListEvents(ctx context.Context) ([]Event, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

func (s *storeStub) CreateEvent(ctx context.Context, draft Draft) (Event, error) {
	s.creates = append(s.creates, draft)
	if s.createErr != nil {
		return Event{}, s.createErr
	}
	s.nextID++
	e := Event{
		ID:       fmt.Sprintf("evt-%d", s.nextID),
		Title:    draft.Title,
		Start:    draft.Start,
		End:      draft.End,
		Category: draft.Category,
		AllDay:   draft.AllDay,
	}
	s.events = append(s.events, e)
	return e, nil
}

func (s *storeStub) UpdateEvent(ctx context.Context, id string, draft Draft) (Event, error) {
	s.updates = append(s.updates, id)
	if s.updateErr != nil {
		return Event{}, s.updateErr
	}
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].Title = draft.Title
			s.events[i].Start = draft.Start
			s.events[i].Category = draft.Category
			return s.events[i], nil
		}
	}
	return Event{}, ErrEventNotFound
}

func (s *storeStub) DeleteEvent(ctx context.Context, id string) error {
	s.deletes = append(s.deletes, id)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return ErrEventNotFound
}

type dialogStub struct {
	confirm bool
	asked   []string
	alerts  []string
}

func (d *dialogStub) Confirm(message string) bool {
	d.asked = append(d.asked, message)
	return d.confirm
}

func (d *dialogStub) Alert(message string) {
	d.alerts = append(d.alerts, message)
}

func newLoadedView(t *testing.T, store *storeStub, now time.Time, opts ...Option) *CalendarView {
	t.Helper()
	opts = append([]Option{WithLocation(time.UTC)}, opts...)
	v := NewCalendarView(store, now, opts...)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return v
}

func TestCalendarView_Navigation(t *testing.T) {
	t.Parallel()

	now := at("2025-01-15T10:00:00")
	v := newLoadedView(t, &storeStub{}, now)

	t.Run("each view keeps its own reference date", func(t *testing.T) {
		v.Navigate(Next)
		v.Navigate(Next)
		if got := v.Reference(ViewMonth); got.Month() != time.March || got.Year() != 2025 {
			t.Fatalf("expected March 2025, got %s", got)
		}

		if err := v.SwitchView(ViewWeek); err != nil {
			t.Fatalf("SwitchView returned error: %v", err)
		}
		if got := v.Reference(ViewWeek); !got.Equal(at("2025-01-15T00:00:00")) {
			t.Fatalf("week reference changed to %s", got)
		}
		v.Navigate(Previous)

		if err := v.SwitchView(ViewMonth); err != nil {
			t.Fatalf("SwitchView returned error: %v", err)
		}
		if got := v.Reference(ViewMonth); got.Month() != time.March {
			t.Fatalf("month reference reset to %s", got)
		}
		if got := v.Reference(ViewWeek); !got.Equal(at("2025-01-08T00:00:00")) {
			t.Fatalf("expected week reference 2025-01-08, got %s", got)
		}
	})

	t.Run("rejects unknown views", func(t *testing.T) {
		if err := v.SwitchView(View("year")); !errors.Is(err, ErrInvalidView) {
			t.Fatalf("expected ErrInvalidView, got %v", err)
		}
	})
}

func TestCalendarView_SubmitCreate(t *testing.T) {
	t.Parallel()

	now := at("2025-03-01T08:00:00")

	t.Run("validation blocks the collaborator call", func(t *testing.T) {
		store := &storeStub{}
		v := newLoadedView(t, store, now)
		v.OpenCreate()

		_, err := v.SubmitCreate(context.Background(), Form{Title: "  ", StartDate: ""})
		var fErr *FormError
		if !errors.As(err, &fErr) {
			t.Fatalf("expected FormError, got %v", err)
		}
		if _, ok := fErr.Fields["title"]; !ok {
			t.Fatalf("expected title error, got %v", fErr.Fields)
		}
		if _, ok := fErr.Fields["start_date"]; !ok {
			t.Fatalf("expected start_date error, got %v", fErr.Fields)
		}
		if len(store.creates) != 0 {
			t.Fatalf("collaborator called %d times", len(store.creates))
		}
		if v.Modal() != ModalCreate {
			t.Fatalf("modal closed after validation failure")
		}
	})

	t.Run("success closes the modal and shows the event", func(t *testing.T) {
		store := &storeStub{}
		v := newLoadedView(t, store, now)
		v.OpenCreate()

		created, err := v.SubmitCreate(context.Background(), Form{
			Title:     "Dentist",
			StartDate: "2025-03-10T14:30:00",
			Category:  CategoryHealth,
		})
		if err != nil {
			t.Fatalf("SubmitCreate returned error: %v", err)
		}
		if v.Modal() != ModalNone {
			t.Fatalf("expected modal to close, got %s", v.Modal())
		}
		if form := v.Form(); form.Title != "" {
			t.Fatalf("expected form reset, got %+v", form)
		}

		if err := v.SwitchView(ViewDay); err != nil {
			t.Fatalf("SwitchView returned error: %v", err)
		}
		v.GoTo(at("2025-03-10T00:00:00"))
		snap := v.Snapshot()
		if snap.Day == nil {
			t.Fatalf("expected day render")
		}
		found := 0
		for _, slot := range snap.Day.Slots {
			for _, e := range slot.Events {
				if e.ID == created.ID {
					found++
					if slot.Hour != 14 {
						t.Fatalf("event rendered in hour %d", slot.Hour)
					}
				}
			}
		}
		if found != 1 {
			t.Fatalf("expected event once in day view, got %d", found)
		}
	})

	t.Run("collaborator failure keeps the modal open", func(t *testing.T) {
		store := &storeStub{createErr: errors.New("boom")}
		v := newLoadedView(t, store, now)
		v.OpenCreate()

		form := Form{Title: "Gym", StartDate: "2025-03-02T07:00", Category: CategoryHealth}
		if _, err := v.SubmitCreate(context.Background(), form); err == nil {
			t.Fatalf("expected collaborator error")
		}
		if v.Modal() != ModalCreate {
			t.Fatalf("expected create modal to stay open")
		}
		if got := v.Form(); got.Title != "Gym" {
			t.Fatalf("expected submitted form to be kept, got %+v", got)
		}
		if len(v.Events()) != 0 {
			t.Fatalf("failed create must not add events")
		}
	})

	t.Run("requires the create modal", func(t *testing.T) {
		v := newLoadedView(t, &storeStub{}, now)
		if _, err := v.SubmitCreate(context.Background(), Form{Title: "x", StartDate: "2025-03-02"}); !errors.Is(err, ErrModalState) {
			t.Fatalf("expected ErrModalState, got %v", err)
		}
	})
}

func TestCalendarView_Edit(t *testing.T) {
	t.Parallel()

	now := at("2025-03-01T08:00:00")
	store := &storeStub{events: []Event{{ID: "e1", Title: "Standup", Start: at("2025-03-03T09:00:00"), Category: CategoryWork}}}
	v := newLoadedView(t, store, now)

	if err := v.OpenEdit("missing"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
	if err := v.OpenEdit("e1"); err != nil {
		t.Fatalf("OpenEdit returned error: %v", err)
	}

	form := v.Form()
	if form.StartDate != "2025-03-03T09:00:00" || form.Title != "Standup" {
		t.Fatalf("unexpected seeded form: %+v", form)
	}
	form.Title = "Renamed"
	if v.Events()[0].Title != "Standup" {
		t.Fatalf("editing the form copy changed the list")
	}

	v.CloseEdit()
	if v.Modal() != ModalNone || v.Events()[0].Title != "Standup" {
		t.Fatalf("closing edit must discard changes")
	}

	if err := v.OpenEdit("e1"); err != nil {
		t.Fatalf("OpenEdit returned error: %v", err)
	}
	if _, err := v.Submit(context.Background(), form); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if len(store.updates) != 1 || store.updates[0] != "e1" {
		t.Fatalf("expected update for e1, got %v", store.updates)
	}
	if v.Events()[0].Title != "Renamed" {
		t.Fatalf("expected list to reflect update, got %+v", v.Events()[0])
	}
}

func TestCalendarView_RequestDelete(t *testing.T) {
	t.Parallel()

	now := at("2025-03-01T08:00:00")
	seed := func() *storeStub {
		return &storeStub{events: []Event{{ID: "e1", Title: "Standup", Start: at("2025-03-03T09:00:00"), Category: CategoryWork}}}
	}

	t.Run("declining issues no collaborator call", func(t *testing.T) {
		store := seed()
		v := newLoadedView(t, store, now)
		dialog := &dialogStub{confirm: false}

		deleted, err := v.RequestDelete(context.Background(), "e1", dialog)
		if err != nil || deleted {
			t.Fatalf("expected no deletion, got deleted=%v err=%v", deleted, err)
		}
		if len(dialog.asked) != 1 {
			t.Fatalf("expected one confirmation prompt, got %d", len(dialog.asked))
		}
		if len(store.deletes) != 0 {
			t.Fatalf("collaborator called after decline")
		}
		if len(v.Events()) != 1 {
			t.Fatalf("event list changed after decline")
		}
	})

	t.Run("confirming removes the event", func(t *testing.T) {
		store := seed()
		v := newLoadedView(t, store, now)

		deleted, err := v.RequestDelete(context.Background(), "e1", &dialogStub{confirm: true})
		if err != nil || !deleted {
			t.Fatalf("expected deletion, got deleted=%v err=%v", deleted, err)
		}
		if len(v.Events()) != 0 {
			t.Fatalf("event still listed after delete")
		}
	})

	t.Run("failure alerts and keeps the event", func(t *testing.T) {
		store := seed()
		store.deleteErr = errors.New("storage down")
		v := newLoadedView(t, store, now)
		dialog := &dialogStub{confirm: true}

		deleted, err := v.RequestDelete(context.Background(), "e1", dialog)
		if err == nil || deleted {
			t.Fatalf("expected failure, got deleted=%v err=%v", deleted, err)
		}
		if len(dialog.alerts) != 1 {
			t.Fatalf("expected one alert, got %d", len(dialog.alerts))
		}
		if len(v.Events()) != 1 {
			t.Fatalf("event removed despite failure")
		}
	})
}

func TestCalendarView_Snapshot(t *testing.T) {
	t.Parallel()

	now := at("2025-06-15T10:00:00")
	store := &storeStub{}
	for i := 0; i < 8; i++ {
		store.events = append(store.events, Event{
			ID:       fmt.Sprintf("f%d", i),
			Start:    now.Add(time.Duration(i+1) * time.Hour),
			Category: CategoryWork,
		})
	}
	store.events = append(store.events,
		Event{ID: "p", Start: at("2025-06-14T10:00:00"), Category: CategoryHealth},
		Event{ID: "t", Start: at("2025-06-15T08:00:00"), Category: CategoryHealth},
	)
	v := newLoadedView(t, store, now)

	snap := v.Snapshot()
	if snap.Month == nil || snap.Week != nil || snap.Day != nil {
		t.Fatalf("expected only a month render")
	}
	if snap.Upcoming.TotalItems != 8 || len(snap.Upcoming.Items) != 6 || snap.Upcoming.TotalPages != 2 {
		t.Fatalf("unexpected upcoming page: %+v", snap.Upcoming)
	}
	if !snap.Upcoming.Items[0].Urgent || snap.Upcoming.Items[0].Status != StatusToday {
		t.Fatalf("expected first upcoming entry to be urgent today, got %+v", snap.Upcoming.Items[0])
	}
	if snap.Stats.Total != 10 || snap.Stats.Past != 1 {
		t.Fatalf("unexpected stats: %+v", snap.Stats)
	}

	v.SetPage(2)
	if page := v.Snapshot().Upcoming; page.Number != 2 || len(page.Items) != 2 {
		t.Fatalf("expected second page with 2 items, got %+v", page)
	}

	if err := v.SelectCategory(CategoryHealth); err != nil {
		t.Fatalf("SelectCategory returned error: %v", err)
	}
	filtered := v.Snapshot()
	if filtered.Upcoming.Number != 1 || filtered.Upcoming.TotalItems != 0 {
		t.Fatalf("expected page reset and no health upcoming, got %+v", filtered.Upcoming)
	}
	if filtered.Stats.Total != 10 || filtered.Stats.Today != 1 || filtered.Stats.Past != 1 || filtered.Stats.Future != 0 {
		t.Fatalf("unexpected filtered stats: %+v", filtered.Stats)
	}

	v.Refresh(at("2025-06-16T09:00:00"))
	if got := v.Snapshot().Stats; got.Past != 2 {
		t.Fatalf("expected refresh to reclassify today as past, got %+v", got)
	}
}

type fixedExpander struct {
	calls int
}

func (f *fixedExpander) Expand(events []Event, from, to time.Time) []Event {
	f.calls++
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Recurrence == "" {
			out = append(out, e)
			continue
		}
		for d := StartOfDay(from); d.Before(to); d = d.AddDate(0, 0, 1) {
			occ := e
			occ.Start = time.Date(d.Year(), d.Month(), d.Day(), e.Start.Hour(), e.Start.Minute(), 0, 0, d.Location())
			occ.OccurrenceOf = e.ID
			out = append(out, occ)
		}
	}
	return out
}

func TestCalendarView_UsesExpander(t *testing.T) {
	t.Parallel()

	now := at("2025-06-15T10:00:00")
	store := &storeStub{events: []Event{{ID: "daily", Start: at("2025-06-01T07:00:00"), Recurrence: "FREQ=DAILY", Category: CategoryHealth}}}
	expander := &fixedExpander{}
	v := newLoadedView(t, store, now, WithExpander(expander))
	if err := v.SwitchView(ViewWeek); err != nil {
		t.Fatalf("SwitchView returned error: %v", err)
	}

	snap := v.Snapshot()
	if expander.calls == 0 {
		t.Fatalf("expander not used")
	}
	for _, d := range snap.Week.Days {
		if len(d.Events) != 1 {
			t.Fatalf("expected one occurrence on %s, got %d", d.Date, len(d.Events))
		}
	}
}

func TestCalendarView_StatsFollowOccurrences(t *testing.T) {
	t.Parallel()

	now := at("2025-06-15T10:00:00")
	store := &storeStub{events: []Event{
		{ID: "daily", Start: at("2025-01-06T07:00:00"), Recurrence: "FREQ=DAILY", Category: CategoryHealth},
		{ID: "p", Start: at("2025-06-14T10:00:00"), Category: CategoryWork},
	}}
	v := newLoadedView(t, store, now, WithExpander(&fixedExpander{}))

	stats := v.Snapshot().Stats
	if stats.Today != 1 || stats.Past != 1 || stats.Future != 0 || stats.Total != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
