package persistence

import (
	"context"
	"time"
)

// EventFilter narrows event queries. Nil bounds are open.
type EventFilter struct {
	StartsFrom   *time.Time
	StartsBefore *time.Time
	Category     string
	// IncludeRecurring keeps recurring events regardless of the start bounds,
	// since their occurrences may fall inside the window.
	IncludeRecurring bool
}

// EventRepository exposes CRUD operations for calendar events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// ResourceRepository exposes CRUD operations for resources, scoped by kind.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource Resource) error
	UpdateResource(ctx context.Context, resource Resource) error
	GetResource(ctx context.Context, kind, id string) (Resource, error)
	ListResources(ctx context.Context, kind string) ([]Resource, error)
	DeleteResource(ctx context.Context, kind, id string) error
}

// MatchesEvent reports whether event satisfies filter.
func (f EventFilter) MatchesEvent(event Event) bool {
	if f.Category != "" && f.Category != event.Category {
		return false
	}
	if f.IncludeRecurring && event.Recurrence != "" {
		return true
	}
	if f.StartsFrom != nil && event.Start.Before(*f.StartsFrom) {
		return false
	}
	if f.StartsBefore != nil && !event.Start.Before(*f.StartsBefore) {
		return false
	}
	return true
}
