package application

import (
	"context"

	"github.com/example/knowledge-dashboard/internal/calendar"
)

// CalendarStore lets the calendar facade use the event service as its
// persistence collaborator.
type CalendarStore struct {
	events    *EventService
	principal func(context.Context) Principal
}

var _ calendar.EventStore = (*CalendarStore)(nil)

// NewCalendarStore binds events to the principal resolved from each call's context.
// A nil resolver acts as ReadOnlyPrincipal.
func NewCalendarStore(events *EventService, principal func(context.Context) Principal) *CalendarStore {
	if principal == nil {
		principal = func(context.Context) Principal { return ReadOnlyPrincipal() }
	}
	return &CalendarStore{events: events, principal: principal}
}

func (s *CalendarStore) ListEvents(ctx context.Context) ([]calendar.Event, error) {
	events, err := s.events.ListEvents(ctx, ListEventsParams{Principal: s.principal(ctx)})
	if err != nil {
		return nil, err
	}
	out := make([]calendar.Event, 0, len(events))
	for _, e := range events {
		out = append(out, e.Calendar())
	}
	return out, nil
}

func (s *CalendarStore) CreateEvent(ctx context.Context, draft calendar.Draft) (calendar.Event, error) {
	event, err := s.events.CreateEvent(ctx, CreateEventParams{
		Principal: s.principal(ctx),
		Input:     EventInputFromDraft(draft),
	})
	if err != nil {
		return calendar.Event{}, err
	}
	return event.Calendar(), nil
}

func (s *CalendarStore) UpdateEvent(ctx context.Context, id string, draft calendar.Draft) (calendar.Event, error) {
	event, err := s.events.UpdateEvent(ctx, UpdateEventParams{
		Principal: s.principal(ctx),
		EventID:   id,
		Input:     EventInputFromDraft(draft),
	})
	if err != nil {
		return calendar.Event{}, err
	}
	return event.Calendar(), nil
}

func (s *CalendarStore) DeleteEvent(ctx context.Context, id string) error {
	return s.events.DeleteEvent(ctx, s.principal(ctx), id)
}
