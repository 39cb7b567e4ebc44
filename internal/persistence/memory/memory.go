// Package memory provides map-backed repositories used by tests and the
// memory storage driver.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/example/knowledge-dashboard/internal/persistence"
)

// Storage keeps events and resources in memory.
type Storage struct {
	mu        sync.RWMutex
	events    map[string]persistence.Event
	resources map[string]map[string]persistence.Resource
}

// New returns an empty Storage.
func New() *Storage {
	return &Storage{
		events:    make(map[string]persistence.Event),
		resources: make(map[string]map[string]persistence.Resource),
	}
}

// Close releases resources held by the storage. No-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// Migrate initialises the storage. No-op for the in-memory implementation.
func (s *Storage) Migrate(context.Context) error {
	return nil
}

// --- EventRepository implementation ---

// CreateEvent stores a new event.
func (s *Storage) CreateEvent(ctx context.Context, event persistence.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; ok {
		return fmt.Errorf("memory: event %s: %w", event.ID, persistence.ErrDuplicate)
	}
	s.events[event.ID] = cloneEvent(event)
	return nil
}

// UpdateEvent replaces an existing event.
func (s *Storage) UpdateEvent(ctx context.Context, event persistence.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.events[event.ID] = cloneEvent(event)
	return nil
}

// GetEvent retrieves an event by ID.
func (s *Storage) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return persistence.Event{}, persistence.ErrNotFound
	}
	return cloneEvent(event), nil
}

// ListEvents returns matching events ordered by start ascending.
func (s *Storage) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]persistence.Event, 0, len(s.events))
	for _, event := range s.events {
		if filter.MatchesEvent(event) {
			events = append(events, cloneEvent(event))
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Start.Equal(events[j].Start) {
			return events[i].ID < events[j].ID
		}
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

// DeleteEvent removes an event by ID.
func (s *Storage) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

// --- ResourceRepository implementation ---

// CreateResource stores a new resource under its kind.
func (s *Storage) CreateResource(ctx context.Context, resource persistence.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.resources[resource.Kind]
	if bucket == nil {
		bucket = make(map[string]persistence.Resource)
		s.resources[resource.Kind] = bucket
	}
	if _, ok := bucket[resource.ID]; ok {
		return fmt.Errorf("memory: %s %s: %w", resource.Kind, resource.ID, persistence.ErrDuplicate)
	}
	bucket[resource.ID] = cloneResource(resource)
	return nil
}

// UpdateResource replaces an existing resource.
func (s *Storage) UpdateResource(ctx context.Context, resource persistence.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.resources[resource.Kind]
	if _, ok := bucket[resource.ID]; !ok {
		return persistence.ErrNotFound
	}
	bucket[resource.ID] = cloneResource(resource)
	return nil
}

// GetResource retrieves a resource by kind and ID.
func (s *Storage) GetResource(ctx context.Context, kind, id string) (persistence.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resource, ok := s.resources[kind][id]
	if !ok {
		return persistence.Resource{}, persistence.ErrNotFound
	}
	return cloneResource(resource), nil
}

// ListResources returns every resource of kind ordered by CreatedAt ascending.
func (s *Storage) ListResources(ctx context.Context, kind string) ([]persistence.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.resources[kind]
	resources := make([]persistence.Resource, 0, len(bucket))
	for _, resource := range bucket {
		resources = append(resources, cloneResource(resource))
	}

	sort.Slice(resources, func(i, j int) bool {
		if resources[i].CreatedAt.Equal(resources[j].CreatedAt) {
			return resources[i].ID < resources[j].ID
		}
		return resources[i].CreatedAt.Before(resources[j].CreatedAt)
	})
	return resources, nil
}

// DeleteResource removes a resource by kind and ID.
func (s *Storage) DeleteResource(ctx context.Context, kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.resources[kind]
	if _, ok := bucket[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(bucket, id)
	return nil
}

func cloneEvent(event persistence.Event) persistence.Event {
	clone := event
	if event.End != nil {
		end := *event.End
		clone.End = &end
	}
	return clone
}

func cloneResource(resource persistence.Resource) persistence.Resource {
	clone := resource
	clone.Tags = slices.Clone(resource.Tags)
	clone.Attributes = maps.Clone(resource.Attributes)
	return clone
}
