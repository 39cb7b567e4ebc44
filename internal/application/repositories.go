package application

import (
	"context"

	"github.com/example/knowledge-dashboard/internal/calendar"
	"github.com/example/knowledge-dashboard/internal/persistence"
)

// eventRepository adapts a persistence.EventRepository to EventRepository.
type eventRepository struct {
	repo persistence.EventRepository
}

// NewEventRepository adapts storage for the event service.
func NewEventRepository(repo persistence.EventRepository) EventRepository {
	return &eventRepository{repo: repo}
}

func (r *eventRepository) CreateEvent(ctx context.Context, event Event) (Event, error) {
	if err := r.repo.CreateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return Event{}, err
	}
	return r.GetEvent(ctx, event.ID)
}

func (r *eventRepository) GetEvent(ctx context.Context, id string) (Event, error) {
	stored, err := r.repo.GetEvent(ctx, id)
	if err != nil {
		return Event{}, err
	}
	return fromPersistenceEvent(stored), nil
}

func (r *eventRepository) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	if err := r.repo.UpdateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return Event{}, err
	}
	return r.GetEvent(ctx, event.ID)
}

func (r *eventRepository) DeleteEvent(ctx context.Context, id string) error {
	return r.repo.DeleteEvent(ctx, id)
}

func (r *eventRepository) ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	stored, err := r.repo.ListEvents(ctx, persistence.EventFilter{
		StartsFrom:       filter.From,
		StartsBefore:     filter.To,
		Category:         string(filter.Category),
		IncludeRecurring: true,
	})
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(stored))
	for _, e := range stored {
		events = append(events, fromPersistenceEvent(e))
	}
	return events, nil
}

func toPersistenceEvent(e Event) persistence.Event {
	return persistence.Event{
		ID:          e.ID,
		UserID:      e.UserID,
		Title:       e.Title,
		Description: e.Description,
		Start:       e.Start,
		End:         e.End,
		Category:    string(e.Category),
		AllDay:      e.AllDay,
		Recurrence:  e.Recurrence,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func fromPersistenceEvent(e persistence.Event) Event {
	return Event{
		ID:          e.ID,
		UserID:      e.UserID,
		Title:       e.Title,
		Description: e.Description,
		Start:       e.Start,
		End:         e.End,
		Category:    calendar.Category(e.Category),
		AllDay:      e.AllDay,
		Recurrence:  e.Recurrence,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// resourceRepository adapts a persistence.ResourceRepository to ResourceRepository.
type resourceRepository struct {
	repo persistence.ResourceRepository
}

// NewResourceRepository adapts storage for the resource service.
func NewResourceRepository(repo persistence.ResourceRepository) ResourceRepository {
	return &resourceRepository{repo: repo}
}

func (r *resourceRepository) CreateResource(ctx context.Context, resource Resource) (Resource, error) {
	if err := r.repo.CreateResource(ctx, toPersistenceResource(resource)); err != nil {
		return Resource{}, err
	}
	return r.GetResource(ctx, resource.Kind, resource.ID)
}

func (r *resourceRepository) GetResource(ctx context.Context, kind Kind, id string) (Resource, error) {
	stored, err := r.repo.GetResource(ctx, string(kind), id)
	if err != nil {
		return Resource{}, err
	}
	return fromPersistenceResource(stored), nil
}

func (r *resourceRepository) UpdateResource(ctx context.Context, resource Resource) (Resource, error) {
	if err := r.repo.UpdateResource(ctx, toPersistenceResource(resource)); err != nil {
		return Resource{}, err
	}
	return r.GetResource(ctx, resource.Kind, resource.ID)
}

func (r *resourceRepository) DeleteResource(ctx context.Context, kind Kind, id string) error {
	return r.repo.DeleteResource(ctx, string(kind), id)
}

func (r *resourceRepository) ListResources(ctx context.Context, kind Kind) ([]Resource, error) {
	stored, err := r.repo.ListResources(ctx, string(kind))
	if err != nil {
		return nil, err
	}
	resources := make([]Resource, 0, len(stored))
	for _, res := range stored {
		resources = append(resources, fromPersistenceResource(res))
	}
	return resources, nil
}

func toPersistenceResource(r Resource) persistence.Resource {
	return persistence.Resource{
		ID:          r.ID,
		Kind:        string(r.Kind),
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
		Category:    r.Category,
		Tags:        r.Tags,
		Attributes:  r.Attributes,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromPersistenceResource(r persistence.Resource) Resource {
	return Resource{
		ID:          r.ID,
		Kind:        Kind(r.Kind),
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
		Category:    r.Category,
		Tags:        r.Tags,
		Attributes:  r.Attributes,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
